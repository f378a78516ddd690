// Package mysql provides a MySQL store backend.
//
// Works against stock MySQL 5.7+ and MySQL-compatible databases. Embeddings,
// chunks, and tags are stored as JSON columns; similarity ranking happens in
// memory after loading.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/webrecall/webrecall-go/pkg/model"
)

const defaultTableName = "browsing_memories"

// Client implements store.Store using MySQL as the backend.
type Client struct {
	db        *sql.DB
	dbName    string
	tableName string
	quota     int64
}

// Config contains configuration for creating a MySQL store.
type Config struct {
	// Host is the MySQL server host.
	Host string

	// Port is the MySQL server port. Defaults to 3306.
	Port int

	// User is the MySQL user.
	User string

	// Password is the MySQL password.
	Password string

	// Database is the database name.
	Database string

	// TableName is the table to use. Defaults to "browsing_memories".
	TableName string

	// Quota is the storage quota in bytes. 0 means unlimited.
	Quota int64
}

// NewClient connects to MySQL and ensures the memories table exists.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.Port == 0 {
		cfg.Port = 3306
	}
	if cfg.TableName == "" {
		cfg.TableName = defaultTableName
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	client := &Client{
		db:        db,
		dbName:    cfg.Database,
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
			id BIGINT PRIMARY KEY,
			url TEXT NOT NULL,
			title TEXT,
			content LONGTEXT,
			full_content LONGTEXT,
			selected_text TEXT,
			domain VARCHAR(255),
			tags JSON,
			favicon TEXT,
			embedding JSON,
			chunks JSON,
			embedding_model VARCHAR(128),
			created_at DATETIME(6) NOT NULL,
			INDEX idx_created (created_at)
		)
	`, c.tableName)
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}
	return nil
}

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

func (c *Client) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", c.tableName)); err != nil {
		return fmt.Errorf("Clear: %w", err)
	}
	return nil
}

// Usage reports the table's data plus index size from information_schema.
func (c *Client) Usage(ctx context.Context) (int64, int64, error) {
	query := `
		SELECT COALESCE(data_length + index_length, 0)
		FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?
	`
	var used int64
	if err := c.db.QueryRowContext(ctx, query, c.dbName, c.tableName).Scan(&used); err != nil {
		return 0, 0, fmt.Errorf("Usage: %w", err)
	}
	return used, c.quota, nil
}

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
	var tagsJSON, embeddingJSON, chunksJSON []byte
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
	if err := json.Unmarshal(tagsJSON, &mem.Tags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(embeddingJSON, &mem.Embedding); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(chunksJSON, &mem.Chunks); err != nil {
		return nil, err
	}
	mem.CreatedAt = createdAt
	return &mem, nil
}
