// Package store persists uploaded custom datasets in sqlite so a cloud
// can be re-rendered without re-uploading it.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"neuroconnect/pkg/dataset"
)

type Store struct {
	*sql.DB
}

// schema.sql defines the dataset and point tables.
//
//go:embed schema.sql
var schemaSQL string

// Open opens (or creates) the sqlite database at path and applies the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db}, nil
}

// DatasetInfo describes a stored dataset.
type DatasetInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveDataset stores the cloud under a fresh id and returns it.
func (s *Store) SaveDataset(name string, cloud *dataset.Cloud) (string, error) {
	id := uuid.NewString()

	tx, err := s.Begin()
	if err != nil {
		return "", fmt.Errorf("starting dataset transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO datasets (id, name, point_count) VALUES (?, ?, ?)",
		id, name, len(cloud.Points),
	); err != nil {
		return "", fmt.Errorf("inserting dataset %s: %w", name, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO dataset_points (dataset_id, seq, point_id, point_group, value, x, y, z)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("preparing point insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range cloud.Points {
		var value interface{}
		if p.HasValue {
			value = p.Value
		}
		if _, err := stmt.Exec(id, i, p.ID, p.Group, value, p.Pos.X, p.Pos.Y, p.Pos.Z); err != nil {
			return "", fmt.Errorf("inserting point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing dataset: %w", err)
	}
	return id, nil
}

// LoadDataset reads a stored cloud back. sql.ErrNoRows is returned for an
// unknown id.
func (s *Store) LoadDataset(id string) (*dataset.Cloud, string, error) {
	var name string
	if err := s.QueryRow("SELECT name FROM datasets WHERE id = ?", id).Scan(&name); err != nil {
		return nil, "", err
	}

	rows, err := s.Query(`
		SELECT point_id, point_group, value, x, y, z
		FROM dataset_points WHERE dataset_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, "", fmt.Errorf("querying points for dataset %s: %w", id, err)
	}
	defer rows.Close()

	cloud := &dataset.Cloud{}
	for rows.Next() {
		var p dataset.Point
		var value sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.Group, &value, &p.Pos.X, &p.Pos.Y, &p.Pos.Z); err != nil {
			return nil, "", fmt.Errorf("scanning point: %w", err)
		}
		if value.Valid {
			p.Value = value.Float64
			p.HasValue = true
		}
		cloud.Points = append(cloud.Points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	return cloud, name, nil
}

// ListDatasets returns stored datasets, newest first.
func (s *Store) ListDatasets() ([]DatasetInfo, error) {
	rows, err := s.Query("SELECT id, name, point_count, created_at FROM datasets ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	defer rows.Close()

	var infos []DatasetInfo
	for rows.Next() {
		var info DatasetInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.Points, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning dataset row: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
