// Package sqlite provides a SQLite store backend.
//
// SQLite is a lightweight, file-based database suitable for local use.
// Embeddings, chunks, and tags are stored as JSON strings in TEXT fields;
// similarity ranking happens in memory after loading.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/webrecall/webrecall-go/pkg/model"
)

const defaultTableName = "browsing_memories"

// Client implements store.Store using SQLite as the backend.
type Client struct {
	db        *sql.DB
	tableName string
	quota     int64
}

// Config contains configuration for creating a SQLite store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// TableName is the name of the table to use. Defaults to
	// "browsing_memories".
	TableName string

	// Quota is the storage quota in bytes. 0 means unlimited.
	Quota int64
}

// NewClient opens (creating if needed) the database at cfg.DBPath and
// ensures the memories table exists.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.TableName == "" {
		cfg.TableName = defaultTableName
	}

	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("NewSQLiteClient: failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	client := &Client{
		db:        db,
		tableName: cfg.TableName,
		quota:     cfg.Quota,
	}
	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			url TEXT NOT NULL,
			title TEXT,
			content TEXT,
			full_content TEXT,
			selected_text TEXT,
			domain TEXT,
			tags TEXT,
			favicon TEXT,
			embedding TEXT,
			chunks TEXT,
			embedding_model TEXT,
			created_at DATETIME NOT NULL
		)
	`, c.tableName)
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	indexQuery := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_created ON %s(created_at)
	`, c.tableName, c.tableName)
	if _, err := c.db.ExecContext(ctx, indexQuery); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}
	return nil
}

// Insert inserts a memory. Vector fields are JSON-encoded.
func (c *Client) Insert(ctx context.Context, memory *model.Memory) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, url, title, content, full_content, selected_text, domain, tags, favicon, embedding, chunks, embedding_model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.tableName)

	args, err := encodeRow(memory)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

// List returns all memories, newest first.
func (c *Client) List(ctx context.Context) ([]model.Memory, error) {
	query := fmt.Sprintf(`
		SELECT id, url, title, content, full_content, selected_text, domain, tags, favicon, embedding, chunks, embedding_model, created_at
		FROM %s ORDER BY created_at DESC
	`, c.tableName)

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var memories []model.Memory
	for rows.Next() {
		mem, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		memories = append(memories, *mem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return memories, nil
}

// Replace swaps the full table contents inside a transaction.
func (c *Client) Replace(ctx context.Context, memories []model.Memory) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", c.tableName)); err != nil {
		return fmt.Errorf("Replace: %w", err)
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s
		(id, url, title, content, full_content, selected_text, domain, tags, favicon, embedding, chunks, embedding_model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.tableName)
	for i := range memories {
		args, err := encodeRow(&memories[i])
		if err != nil {
			return fmt.Errorf("Replace: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("Replace: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Replace: %w", err)
	}
	return nil
}

// Clear removes all memories.
func (c *Client) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", c.tableName)); err != nil {
		return fmt.Errorf("Clear: %w", err)
	}
	return nil
}

// Usage reports the database file size via page accounting.
func (c *Client) Usage(ctx context.Context) (int64, int64, error) {
	var pageCount, pageSize int64
	if err := c.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0, 0, fmt.Errorf("Usage: %w", err)
	}
	if err := c.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0, 0, fmt.Errorf("Usage: %w", err)
	}
	return pageCount * pageSize, c.quota, nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}

func encodeRow(memory *model.Memory) ([]interface{}, error) {
	tagsJSON, err := json.Marshal(memory.Tags)
	if err != nil {
		return nil, err
	}
	embeddingJSON, err := json.Marshal(memory.Embedding)
	if err != nil {
		return nil, err
	}
	chunksJSON, err := json.Marshal(memory.Chunks)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		memory.ID,
		memory.URL,
		memory.Title,
		memory.Content,
		memory.FullContent,
		memory.SelectedText,
		memory.Domain,
		string(tagsJSON),
		memory.Favicon,
		string(embeddingJSON),
		string(chunksJSON),
		memory.EmbeddingModel,
		memory.CreatedAt,
	}, nil
}

func scanRow(rows *sql.Rows) (*model.Memory, error) {
	var mem model.Memory
	var tagsJSON, embeddingJSON, chunksJSON string
	var createdAt time.Time
	err := rows.Scan(
		&mem.ID,
		&mem.URL,
		&mem.Title,
		&mem.Content,
		&mem.FullContent,
		&mem.SelectedText,
		&mem.Domain,
		&tagsJSON,
		&mem.Favicon,
		&embeddingJSON,
		&chunksJSON,
		&mem.EmbeddingModel,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &mem.Tags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(embeddingJSON), &mem.Embedding); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(chunksJSON), &mem.Chunks); err != nil {
		return nil, err
	}
	mem.CreatedAt = createdAt
	return &mem, nil
}
