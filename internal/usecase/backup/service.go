// Package backup streams table contents to and from NDJSON archives. Each
// line is a JSON record: one meta header followed by one record per row.
package backup

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"           // postgres driver for database/sql
	_ "github.com/mattn/go-sqlite3" // sqlite driver for database/sql
)

const (
	defaultBatchSize = 512
	formatVersion    = 1
)

var errNoTablesSelected = errors.New("backup: no tables selected")

// ColumnKind drives value conversion between database/sql scans and JSON.
type ColumnKind int

const (
	KindString ColumnKind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
	KindJSON
)

// Column describes one exported column.
type Column struct {
	Name      string
	Kind      ColumnKind
	Nullable  bool
	Increment bool
}

// Table describes one exported table. Conflict names the columns of the
// unique key used for upserts on import.
type Table struct {
	Name     string
	Columns  []Column
	Conflict []string
}

// Tables lists every table covered by export and import, in dependency
// order so foreign keys resolve during import.
var Tables = []Table{
	{
		Name: "users",
		Columns: []Column{
			{Name: "id", Kind: KindInt, Increment: true},
			{Name: "name", Kind: KindString},
			{Name: "email", Kind: KindString},
			{Name: "settings", Kind: KindJSON},
			{Name: "stats", Kind: KindJSON},
			{Name: "version", Kind: KindInt},
			{Name: "created_at", Kind: KindTime},
			{Name: "updated_at", Kind: KindTime},
		},
		Conflict: []string{"id"},
	},
	{
		Name: "words",
		Columns: []Column{
			{Name: "id", Kind: KindInt, Increment: true},
			{Name: "term", Kind: KindString},
			{Name: "language", Kind: KindString},
			{Name: "translation", Kind: KindString},
			{Name: "definition", Kind: KindString},
			{Name: "examples", Kind: KindJSON},
			{Name: "level", Kind: KindString},
			{Name: "difficulty", Kind: KindString},
			{Name: "status", Kind: KindString},
			{Name: "category", Kind: KindString},
			{Name: "tags", Kind: KindJSON},
			{Name: "times_reviewed", Kind: KindInt},
			{Name: "success_count", Kind: KindInt},
			{Name: "failure_count", Kind: KindInt},
			{Name: "created_at", Kind: KindTime},
			{Name: "updated_at", Kind: KindTime},
		},
		Conflict: []string{"id"},
	},
	{
		Name: "word_progress",
		Columns: []Column{
			{Name: "id", Kind: KindInt, Increment: true},
			{Name: "user_id", Kind: KindInt},
			{Name: "word_id", Kind: KindInt},
			{Name: "status", Kind: KindString},
			{Name: "ease_factor", Kind: KindFloat},
			{Name: "interval_days", Kind: KindInt},
			{Name: "repetition", Kind: KindInt},
			{Name: "category", Kind: KindString},
			{Name: "last_reviewed_at", Kind: KindTime, Nullable: true},
			{Name: "next_review_at", Kind: KindTime, Nullable: true},
			{Name: "history", Kind: KindJSON},
			{Name: "version", Kind: KindInt},
			{Name: "created_at", Kind: KindTime},
			{Name: "updated_at", Kind: KindTime},
		},
		Conflict: []string{"user_id", "word_id"},
	},
	{
		Name: "review_logs",
		Columns: []Column{
			{Name: "id", Kind: KindString},
			{Name: "user_id", Kind: KindInt},
			{Name: "word_id", Kind: KindInt},
			{Name: "action", Kind: KindString},
			{Name: "before_status", Kind: KindString},
			{Name: "after_status", Kind: KindString},
			{Name: "interval_days", Kind: KindInt},
			{Name: "ease_factor", Kind: KindFloat},
			{Name: "result", Kind: KindString},
			{Name: "duration_ms", Kind: KindInt},
			{Name: "created_at", Kind: KindTime},
		},
		Conflict: []string{"id"},
	},
	{
		Name: "daily_user_stats",
		Columns: []Column{
			{Name: "id", Kind: KindInt, Increment: true},
			{Name: "user_id", Kind: KindInt},
			{Name: "date", Kind: KindString},
			{Name: "quizzes_played", Kind: KindInt},
			{Name: "words_reviewed", Kind: KindInt},
			{Name: "words_mastered", Kind: KindInt},
			{Name: "xp", Kind: KindInt},
			{Name: "streak_active", Kind: KindBool},
			{Name: "created_at", Kind: KindTime},
			{Name: "updated_at", Kind: KindTime},
		},
		Conflict: []string{"user_id", "date"},
	},
}

// ProgressReporter receives per-table progress callbacks during export.
type ProgressReporter interface {
	StartTable(table string, total int)
	Increment(table string, delta int)
	FinishTable(table string)
}

type noopProgress struct{}

func (noopProgress) StartTable(string, int) {}
func (noopProgress) Increment(string, int)  {}
func (noopProgress) FinishTable(string)     {}

// Service copies table contents between a database and an NDJSON stream.
type Service struct {
	driver     string
	dsn        string
	batchSize  int
	tables     []Table
	tableIndex map[string]Table
	schemaHash string
}

type Option func(*Service)

func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// NewService constructs a backup service bound to the provided database
// driver and DSN.
func NewService(driver, dsn string, opts ...Option) (*Service, error) {
	driver = strings.TrimSpace(strings.ToLower(driver))
	if driver == "" {
		return nil, errors.New("backup: driver is required")
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("backup: DSN is required")
	}

	tableIndex := make(map[string]Table, len(Tables))
	for _, tbl := range Tables {
		tableIndex[tbl.Name] = tbl
	}

	svc := &Service{
		driver:     driver,
		dsn:        dsn,
		batchSize:  defaultBatchSize,
		tables:     Tables,
		tableIndex: tableIndex,
		schemaHash: computeSchemaHash(Tables),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	tables   []string
	reporter ProgressReporter
}

// WithTables restricts export to the provided table names.
func WithTables(tables []string) ExportOption {
	return func(cfg *exportConfig) {
		if len(tables) == 0 {
			return
		}
		cfg.tables = append([]string{}, tables...)
	}
}

// WithProgressReporter registers a reporter for progress callbacks.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	tables []string
}

// WithImportTables restricts import to the provided table names.
func WithImportTables(tables []string) ImportOption {
	return func(cfg *importConfig) {
		if len(tables) == 0 {
			return
		}
		cfg.tables = append([]string{}, tables...)
	}
}

type record struct {
	Type       string         `json:"type"`
	Version    int            `json:"version,omitempty"`
	ExportedAt *time.Time     `json:"exported_at,omitempty"`
	SchemaHash string         `json:"schema_hash,omitempty"`
	Tables     []string       `json:"tables,omitempty"`
	RowCounts  map[string]int `json:"row_counts,omitempty"`
	Payload    any            `json:"payload,omitempty"`
}

type rawRecord struct {
	Type       string          `json:"type"`
	Version    int             `json:"version"`
	ExportedAt *time.Time      `json:"exported_at"`
	SchemaHash string          `json:"schema_hash"`
	Tables     []string        `json:"tables"`
	RowCounts  map[string]int  `json:"row_counts"`
	Payload    json.RawMessage `json:"payload"`
}

type sequenceKey struct {
	Table  string
	Column string
}

type sequenceStats map[sequenceKey]int64

// Export writes the meta header and every selected row to w as NDJSON.
func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := s.selectTables(cfg.tables)
	if err != nil {
		return err
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	db, err := s.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	counts := make(map[string]int, len(tables))
	for _, tbl := range tables {
		count, err := s.countTableRows(ctx, db, tbl.Name)
		if err != nil {
			return fmt.Errorf("count table %s: %w", tbl.Name, err)
		}
		counts[tbl.Name] = count
	}

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := time.Now().UTC()
	meta := record{
		Type:       "meta",
		Version:    formatVersion,
		ExportedAt: &now,
		SchemaHash: s.schemaHash,
		Tables:     tableNames(tables),
		RowCounts:  counts,
	}
	if err := writeRecord(writer, meta); err != nil {
		return err
	}

	for _, tbl := range tables {
		total := counts[tbl.Name]
		reporter.StartTable(tbl.Name, total)
		if err := s.exportTable(ctx, db, tbl, reporter, writer); err != nil {
			return err
		}
		reporter.FinishTable(tbl.Name)
	}
	return writer.Flush()
}

// Import reads an NDJSON archive and upserts every row inside one
// transaction. The meta record must be present and carry a supported
// format version.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) error {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := s.selectTables(cfg.tables)
	if err != nil {
		return err
	}
	tableFilter := make(map[string]Table, len(tables))
	for _, tbl := range tables {
		tableFilter[tbl.Name] = tbl
	}

	db, err := s.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	br := bufio.NewReader(r)
	var (
		metaSeen bool
		meta     rawRecord
		stats    = make(sequenceStats)
	)

	for {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read backup: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var rec rawRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}

			switch rec.Type {
			case "meta":
				metaSeen = true
				meta = rec
			default:
				tbl, ok := tableFilter[rec.Type]
				if !ok {
					// Skip records for tables not requested.
					break
				}
				if len(rec.Payload) == 0 {
					return fmt.Errorf("backup: missing payload for table %s", rec.Type)
				}
				if err := s.importRow(ctx, tx, tbl, rec.Payload, stats); err != nil {
					return err
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if !metaSeen {
		return errors.New("backup: missing meta record")
	}
	if meta.Version != formatVersion {
		return fmt.Errorf("backup: unsupported format version %d", meta.Version)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	commit = true

	return s.syncSequences(ctx, db, stats)
}

func (s *Service) exportTable(ctx context.Context, db *sql.DB, table Table, reporter ProgressReporter, w io.Writer) error {
	columns := columnNames(table)
	batch := s.batchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	for offset := 0; ; offset += batch {
		query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT %d OFFSET %d",
			strings.Join(columns, ", "),
			table.Name,
			strings.Join(table.Conflict, ", "),
			batch,
			offset,
		)
		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("query %s: %w", table.Name, err)
		}

		rowCount := 0
		for rows.Next() {
			values := make([]any, len(columns))
			dest := make([]any, len(columns))
			for i := range dest {
				dest[i] = &values[i]
			}
			if err := rows.Scan(dest...); err != nil {
				rows.Close()
				return fmt.Errorf("scan %s: %w", table.Name, err)
			}
			rowMap, err := convertRow(table, values)
			if err != nil {
				rows.Close()
				return err
			}
			if err := writeRecord(w, record{Type: table.Name, Payload: rowMap}); err != nil {
				rows.Close()
				return err
			}
			reporter.Increment(table.Name, 1)
			rowCount++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate %s: %w", table.Name, err)
		}
		rows.Close()
		if rowCount < batch {
			break
		}
	}
	return nil
}

func (s *Service) importRow(ctx context.Context, tx *sql.Tx, table Table, payload json.RawMessage, stats sequenceStats) error {
	values, err := decodePayload(table, payload)
	if err != nil {
		return fmt.Errorf("decode payload for %s: %w", table.Name, err)
	}
	if len(values) == 0 {
		return nil
	}

	cols := make([]string, 0, len(values))
	args := make([]any, 0, len(values))
	incrementCols := make([]string, 0, 1)
	for _, col := range table.Columns {
		val, ok := values[col.Name]
		if !ok {
			continue
		}
		if val == nil && !col.Nullable {
			return fmt.Errorf("backup: missing required value for %s.%s", table.Name, col.Name)
		}
		cols = append(cols, col.Name)
		args = append(args, val)
		if col.Increment {
			incrementCols = append(incrementCols, col.Name)
		}
	}
	if len(cols) == 0 {
		return nil
	}

	placeholder := buildPlaceholders(s.driver, len(cols))
	if placeholder == nil {
		return fmt.Errorf("backup: unsupported driver %q", s.driver)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)%s",
		table.Name,
		strings.Join(cols, ", "),
		strings.Join(placeholder, ", "),
		buildUpsertClause(table, cols),
	)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table.Name, err)
	}

	for _, colName := range incrementCols {
		if max, ok := tryToInt64(values[colName]); ok {
			key := sequenceKey{Table: table.Name, Column: colName}
			if max > stats[key] {
				stats[key] = max
			}
		}
	}
	return nil
}

func (s *Service) selectTables(requested []string) ([]Table, error) {
	if len(requested) == 0 {
		return append([]Table{}, s.tables...), nil
	}
	set := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		n := strings.TrimSpace(strings.ToLower(name))
		if n == "" {
			continue
		}
		if _, ok := s.tableIndex[n]; !ok {
			return nil, fmt.Errorf("backup: unsupported table %q", name)
		}
		set[n] = struct{}{}
	}
	if len(set) == 0 {
		return nil, errNoTablesSelected
	}
	tbls := make([]Table, 0, len(set))
	for _, tbl := range s.tables {
		if _, ok := set[tbl.Name]; ok {
			tbls = append(tbls, tbl)
		}
	}
	return tbls, nil
}

func (s *Service) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if s.driver == "sqlite3" || s.driver == "sqlite" {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	}
	return db, nil
}

func (s *Service) countTableRows(ctx context.Context, db *sql.DB, table string) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Service) syncSequences(ctx context.Context, db *sql.DB, stats sequenceStats) error {
	if len(stats) == 0 {
		return nil
	}
	if s.driver != "postgres" && s.driver != "postgresql" {
		return nil
	}
	for key, maxVal := range stats {
		if maxVal <= 0 {
			continue
		}
		query := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', '%s'), GREATEST(%d, (SELECT COALESCE(MAX(%s), 0) FROM %s)))",
			key.Table,
			key.Column,
			maxVal,
			key.Column,
			key.Table,
		)
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("sync sequence for %s.%s: %w", key.Table, key.Column, err)
		}
	}
	return nil
}

func convertRow(table Table, values []any) (map[string]any, error) {
	result := make(map[string]any, len(table.Columns))
	for idx, col := range table.Columns {
		val, err := convertDBValue(col, values[idx])
		if err != nil {
			return nil, fmt.Errorf("convert %s.%s: %w", table.Name, col.Name, err)
		}
		result[col.Name] = val
	}
	return result, nil
}

func convertDBValue(col Column, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case []byte:
		// database/sql often returns []byte for text and json columns.
		if col.Kind == KindJSON {
			cp := make(json.RawMessage, len(v))
			copy(cp, v)
			return cp, nil
		}
		return string(v), nil
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), nil
	}

	switch col.Kind {
	case KindBool:
		return toBool(value)
	case KindInt:
		return toInt64(value)
	case KindFloat:
		return toFloat64(value)
	default:
		return value, nil
	}
}

func decodePayload(table Table, payload json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	result := make(map[string]any, len(raw))
	for key, val := range raw {
		col, ok := findColumn(table, key)
		if !ok {
			return nil, fmt.Errorf("column %s not found in table %s", key, table.Name)
		}
		converted, err := convertJSONValue(col, val)
		if err != nil {
			return nil, fmt.Errorf("convert %s.%s: %w", table.Name, key, err)
		}
		result[key] = converted
	}
	return result, nil
}

func convertJSONValue(col Column, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch col.Kind {
	case KindBool:
		return toBool(value)
	case KindInt:
		return toInt64(value)
	case KindFloat:
		return toFloat64(value)
	case KindTime:
		str, err := toString(value)
		if err != nil {
			return nil, err
		}
		if str == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return nil, err
		}
		return t.UTC(), nil
	case KindJSON:
		b, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(b), nil
	default:
		return value, nil
	}
}

func buildPlaceholders(driver string, count int) []string {
	switch driver {
	case "postgres", "postgresql":
		holders := make([]string, count)
		for i := 0; i < count; i++ {
			holders[i] = fmt.Sprintf("$%d", i+1)
		}
		return holders
	case "sqlite3", "sqlite":
		holders := make([]string, count)
		for i := 0; i < count; i++ {
			holders[i] = "?"
		}
		return holders
	default:
		return nil
	}
}

func buildUpsertClause(table Table, insertCols []string) string {
	updateCols := difference(insertCols, table.Conflict)
	if len(updateCols) == 0 {
		return fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(table.Conflict, ", "))
	}
	assignments := make([]string, len(updateCols))
	for i, col := range updateCols {
		assignments[i] = fmt.Sprintf("%s = excluded.%s", col, col)
	}
	return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(table.Conflict, ", "),
		strings.Join(assignments, ", "),
	)
}

func columnNames(table Table) []string {
	cols := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		cols[i] = col.Name
	}
	return cols
}

func tableNames(tables []Table) []string {
	names := make([]string, len(tables))
	for i, tbl := range tables {
		names[i] = tbl.Name
	}
	return names
}

func difference(slice []string, exclude []string) []string {
	set := make(map[string]struct{}, len(exclude))
	for _, item := range exclude {
		set[item] = struct{}{}
	}
	result := make([]string, 0, len(slice))
	for _, item := range slice {
		if _, ok := set[item]; !ok {
			result = append(result, item)
		}
	}
	return result
}

func findColumn(table Table, name string) (Column, bool) {
	for _, col := range table.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

func computeSchemaHash(tables []Table) string {
	builder := &strings.Builder{}
	sorted := make([]Table, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, tbl := range sorted {
		builder.WriteString(tbl.Name)
		builder.WriteString("|cols:")
		for _, col := range tbl.Columns {
			builder.WriteString(fmt.Sprintf("%s:%d:%t:%t;", col.Name, col.Kind, col.Nullable, col.Increment))
		}
		builder.WriteString("|key:")
		builder.WriteString(strings.Join(tbl.Conflict, ","))
		builder.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(builder.String()))
	return fmt.Sprintf("%x", sum[:])
}

func writeRecord(w io.Writer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}

func tryToInt64(val any) (int64, bool) {
	switch v := val.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
	case float64:
		return int64(v), true
	case string:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return false, err
		}
		return i != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case string:
		switch strings.ToLower(v) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		default:
			return false, fmt.Errorf("invalid bool value %q", v)
		}
	default:
		return false, fmt.Errorf("unsupported bool type %T", value)
	}
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported int type %T", value)
	}
}

func toFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unsupported float type %T", value)
	}
}

func toString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case []byte:
		return string(v), nil
	default:
		return fmt.Sprintf("%v", value), nil
	}
}
