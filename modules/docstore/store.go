package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Aswath1709/task-manager-app/domain/errs"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds document store connection settings.
type Config struct {
	Path        string
	Debug       bool
	BusyTimeout time.Duration
}

// RawRecord is a stored document with its identity and revision.
type RawRecord struct {
	ID        string
	Revision  string
	Body      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ViewRow is one result of a view query.
type ViewRow struct {
	Key    json.RawMessage
	Value  json.RawMessage
	Record RawRecord
}

// Store is a revisioned JSON document store on SQLite. It is safe for
// concurrent use; writes are serialized by the single underlying connection.
type Store struct {
	db  *gorm.DB
	now func() time.Time

	mu          sync.RWMutex
	collections map[string]Collection
}

// Open connects to the database at cfg.Path and migrates the schema.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("docstore: path is required")
	}
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(dsn(cfg)), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStoreUnavailable, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStoreUnavailable, err)
	}
	// One connection keeps :memory: databases shared and writes serialized.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&documentRow{}, &viewRow{}, &uniqueKey{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate document store: %w", err)
	}

	return &Store{
		db:          db,
		now:         time.Now,
		collections: make(map[string]Collection),
	}, nil
}

func dsn(cfg Config) string {
	if cfg.Path == ":memory:" {
		return cfg.Path
	}
	timeout := cfg.BusyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	sep := "?"
	if strings.Contains(cfg.Path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_busy_timeout=%d", cfg.Path, sep, timeout.Milliseconds())
}

// EnsureCollection registers c and stores its design record if absent.
// Calling it again for an existing collection is a no-op.
func (s *Store) EnsureCollection(ctx context.Context, c Collection) error {
	if err := c.validate(); err != nil {
		return err
	}
	body, err := json.Marshal(c)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	design := documentRow{
		Collection: c.Name,
		ID:         designPrefix + c.Name,
		Rev:        newRevision(1),
		Body:       string(body),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var existing documentRow
	err = s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", design.Collection, design.ID).
		Take(&existing).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Create(&design).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return translate(err)
		}
	default:
		return translate(err)
	}

	s.mu.Lock()
	s.collections[c.Name] = c
	s.mu.Unlock()
	return nil
}

func (s *Store) collection(name string) (Collection, error) {
	s.mu.RLock()
	c, ok := s.collections[name]
	s.mu.RUnlock()
	if !ok {
		return Collection{}, errs.Invalid("collection", "unknown collection "+name)
	}
	return c, nil
}

// Insert stores a new document. An empty id is replaced by a generated one.
func (s *Store) Insert(ctx context.Context, collection, id string, doc any) (string, string, error) {
	c, err := s.collection(collection)
	if err != nil {
		return "", "", err
	}
	if strings.HasPrefix(id, designPrefix) {
		return "", "", errs.Invalid("id", "reserved prefix "+designPrefix)
	}
	if id == "" {
		id = newID()
	}
	body, fields, err := encodeBody(doc)
	if err != nil {
		return "", "", err
	}

	now := s.now().UTC()
	row := documentRow{
		Collection: collection,
		ID:         id,
		Rev:        newRevision(1),
		Body:       string(body),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return writeIndexes(tx, c, id, fields)
	})
	if err != nil {
		return "", "", translate(err)
	}
	return id, row.Rev, nil
}

// Get returns the current record for id.
func (s *Store) Get(ctx context.Context, collection, id string) (RawRecord, error) {
	if strings.HasPrefix(id, designPrefix) {
		return RawRecord{}, errs.ErrNotFound
	}
	var row documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Take(&row).Error
	if err != nil {
		return RawRecord{}, translate(err)
	}
	return row.record(), nil
}

// Replace overwrites the document when rev matches the stored revision and
// returns the new revision.
func (s *Store) Replace(ctx context.Context, collection, id, rev string, doc any) (string, error) {
	c, err := s.collection(collection)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(id, designPrefix) {
		return "", errs.ErrNotFound
	}
	body, fields, err := encodeBody(doc)
	if err != nil {
		return "", err
	}

	var newRev string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := lockCurrent(tx, collection, id, rev)
		if err != nil {
			return err
		}
		newRev = newRevision(generation(cur.Rev) + 1)

		res := tx.Model(&documentRow{}).
			Where("collection = ? AND id = ? AND rev = ?", collection, id, rev).
			Updates(map[string]any{
				"rev":        newRev,
				"body":       string(body),
				"updated_at": s.now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &errs.ConflictError{ID: id, Expected: rev}
		}

		if err := clearIndexes(tx, collection, id); err != nil {
			return err
		}
		return writeIndexes(tx, c, id, fields)
	})
	if err != nil {
		return "", translate(err)
	}
	return newRev, nil
}

// Delete removes the document when rev matches the stored revision.
func (s *Store) Delete(ctx context.Context, collection, id, rev string) error {
	if strings.HasPrefix(id, designPrefix) {
		return errs.ErrNotFound
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockCurrent(tx, collection, id, rev); err != nil {
			return err
		}
		res := tx.Where("collection = ? AND id = ? AND rev = ?", collection, id, rev).
			Delete(&documentRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &errs.ConflictError{ID: id, Expected: rev}
		}
		return clearIndexes(tx, collection, id)
	})
	return translate(err)
}

// QueryView returns the documents whose view key equals key, ordered by key
// and then document id.
func (s *Store) QueryView(ctx context.Context, collection, view string, key any) ([]ViewRow, error) {
	c, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	if _, ok := c.view(view); !ok {
		return nil, errs.Invalid("view", "unknown view "+view)
	}
	encoded, err := json.Marshal(key)
	if err != nil {
		return nil, errs.Invalid("key", err.Error())
	}

	var results []viewResult
	err = s.db.WithContext(ctx).
		Table("view_rows AS v").
		Select("v.view_key, v.view_value, v.doc_id, d.rev, d.body").
		Joins("JOIN documents AS d ON d.collection = v.collection AND d.id = v.doc_id").
		Where("v.collection = ? AND v.view_name = ? AND v.view_key = ?", collection, view, string(encoded)).
		Where("substr(v.doc_id, 1, ?) <> ?", len(designPrefix), designPrefix).
		Order("v.view_key, v.doc_id").
		Scan(&results).Error
	if err != nil {
		return nil, translate(err)
	}

	rows := make([]ViewRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, ViewRow{
			Key:    json.RawMessage(r.ViewKey),
			Value:  json.RawMessage(r.ViewValue),
			Record: RawRecord{ID: r.DocID, Revision: r.Rev, Body: json.RawMessage(r.Body)},
		})
	}
	return rows, nil
}

// FindUnique returns the document that claims value for a unique field.
func (s *Store) FindUnique(ctx context.Context, collection, field, value string) (RawRecord, error) {
	var result viewResult
	err := s.db.WithContext(ctx).
		Table("unique_keys AS u").
		Select("u.doc_id, d.rev, d.body").
		Joins("JOIN documents AS d ON d.collection = u.collection AND d.id = u.doc_id").
		Where("u.collection = ? AND u.field = ? AND u.value = ?", collection, field, value).
		Take(&result).Error
	if err != nil {
		return RawRecord{}, translate(err)
	}
	return RawRecord{ID: result.DocID, Revision: result.Rev, Body: json.RawMessage(result.Body)}, nil
}

// All returns every non-design document of a collection ordered by id.
func (s *Store) All(ctx context.Context, collection string) ([]RawRecord, error) {
	var rows []documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND substr(id, 1, ?) <> ?", collection, len(designPrefix), designPrefix).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]RawRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return translate(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return translate(err)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// lockCurrent loads the stored row and checks the expected revision.
func lockCurrent(tx *gorm.DB, collection, id, rev string) (documentRow, error) {
	var cur documentRow
	if err := tx.Where("collection = ? AND id = ?", collection, id).Take(&cur).Error; err != nil {
		return documentRow{}, err
	}
	if cur.Rev != rev {
		return documentRow{}, &errs.ConflictError{ID: id, Expected: rev, Current: cur.Rev}
	}
	return cur, nil
}

func writeIndexes(tx *gorm.DB, c Collection, id string, fields map[string]any) error {
	emitted, err := c.evaluate(fields)
	if err != nil {
		return errs.Invalid("body", err.Error())
	}
	if len(emitted) > 0 {
		rows := make([]viewRow, 0, len(emitted))
		for _, e := range emitted {
			rows = append(rows, viewRow{
				Collection: c.Name,
				ViewName:   e.view,
				ViewKey:    e.key,
				DocID:      id,
				ViewValue:  e.value,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}

	for field, value := range c.uniqueValues(fields) {
		claim := uniqueKey{Collection: c.Name, Field: field, Value: value, DocID: id}
		if err := tx.Create(&claim).Error; err != nil {
			return err
		}
	}
	return nil
}

func clearIndexes(tx *gorm.DB, collection, id string) error {
	if err := tx.Where("collection = ? AND doc_id = ?", collection, id).Delete(&viewRow{}).Error; err != nil {
		return err
	}
	return tx.Where("collection = ? AND doc_id = ?", collection, id).Delete(&uniqueKey{}).Error
}

func encodeBody(doc any) ([]byte, map[string]any, error) {
	var body []byte
	switch d := doc.(type) {
	case json.RawMessage:
		body = d
	case []byte:
		body = d
	default:
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, nil, errs.Invalid("body", err.Error())
		}
		body = b
	}
	fields, err := decodeFields(body)
	if err != nil {
		return nil, nil, errs.Invalid("body", err.Error())
	}
	return body, fields, nil
}

func (r documentRow) record() RawRecord {
	return RawRecord{
		ID:        r.ID,
		Revision:  r.Rev,
		Body:      json.RawMessage(r.Body),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// newID returns a time-ordered identifier so id order follows insert order.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func newRevision(gen int) string {
	return strconv.Itoa(gen) + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func generation(rev string) int {
	prefix, _, _ := strings.Cut(rev, "-")
	n, err := strconv.Atoi(prefix)
	if err != nil {
		return 0
	}
	return n
}

// translate maps storage errors onto the shared taxonomy.
func translate(err error) error {
	var conflict *errs.ConflictError
	var invalid *errs.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &conflict), errors.As(err, &invalid):
		return err
	case errors.Is(err, errs.ErrNotFound), errors.Is(err, errs.ErrDuplicateKey), errors.Is(err, errs.ErrStoreUnavailable):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.ErrDuplicateKey
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %w", errs.ErrStoreUnavailable, err)
}
