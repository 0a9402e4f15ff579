// Copyright 2024 Ant Group Co., Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package archive keeps explained plans in a relational store so they can
// be listed and printed again later.
package archive

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlog "gorm.io/gorm/logger"

	"github.com/arenadata/plandump/pkg/config"
	"github.com/arenadata/plandump/pkg/explain"
)

var ErrNotFound = errors.New("report not found in archive")

// Store wraps the archive database.
type Store struct {
	db *gorm.DB
}

// Open connects to the archive described by conf and creates its tables
// when the database is empty.
func Open(conf *config.StorageConf) (*Store, error) {
	if err := config.CheckStorage(conf); err != nil {
		return nil, err
	}
	gormConfig := &gorm.Config{
		Logger: gormlog.New(
			logrus.StandardLogger(),
			gormlog.Config{
				SlowThreshold: 200 * time.Millisecond,
				Colorful:      false,
				LogLevel:      gormlog.Warn,
			}),
	}

	var db *gorm.DB
	var err error
	switch conf.Type {
	case config.StorageTypeSQLite:
		db, err = gorm.Open(sqlite.Open(conf.ConnStr), gormConfig)
	case config.StorageTypeMySQL:
		db, err = gorm.Open(mysql.Open(conf.ConnStr), gormConfig)
	case config.StorageTypePostgres:
		db, err = gorm.Open(postgres.Open(conf.ConnStr), gormConfig)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s archive", conf.Type)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	sqlDB.SetConnMaxIdleTime(conf.ConnMaxIdleTime)
	sqlDB.SetConnMaxLifetime(conf.ConnMaxLifetime)

	return NewStore(db)
}

// NewStore wraps an open connection, bootstrapping it if needed.
func NewStore(db *gorm.DB) (*Store, error) {
	if NeedBootstrap(db) {
		if err := Bootstrap(db); err != nil {
			return nil, err
		}
	}
	if err := CheckStorage(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NeedBootstrap checks if the store is empty
func NeedBootstrap(db *gorm.DB) bool {
	for _, tn := range allTables {
		if db.Migrator().HasTable(tn) {
			return false
		}
	}
	return true
}

// Bootstrap creates the archive tables.
func Bootstrap(db *gorm.DB) error {
	return db.AutoMigrate(allTables...)
}

// CheckStorage verifies archive storage is valid
func CheckStorage(db *gorm.DB) error {
	for _, tn := range allTables {
		if !db.Migrator().HasTable(tn) {
			return fmt.Errorf("table %s is missing in archive", reflect.TypeOf(tn).String())
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save stores rep and returns the id of the new row.
func (s *Store) Save(rep *explain.Report, source, queryDesc string) (string, error) {
	lines, err := json.Marshal(rep.Lines)
	if err != nil {
		return "", err
	}
	row := &Report{
		ID:        uuid.NewString(),
		Source:    source,
		QueryDesc: queryDesc,
		Command:   rep.Command,
		PlanGen:   rep.PlanGen,
		NumLines:  len(rep.Lines),
		Text:      rep.String(),
		Lines:     string(lines),
	}
	if result := s.db.Create(row); result.Error != nil {
		return "", errors.Wrap(result.Error, "save report")
	}
	return row.ID, nil
}

// List returns archived reports, newest first. A positive limit caps the
// number of rows.
func (s *Store) List(limit int) ([]Report, error) {
	var rows []Report
	query := s.db.Order("created_at desc").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&rows); result.Error != nil {
		return nil, result.Error
	}
	return rows, nil
}

// Get returns the report stored under id.
func (s *Store) Get(id string) (*Report, error) {
	var row Report
	result := s.db.Where(Report{ID: id}).Limit(1).Find(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	return &row, nil
}

// Explained rebuilds the report held by r.
func (r *Report) Explained() (*explain.Report, error) {
	rep := &explain.Report{Command: r.Command, PlanGen: r.PlanGen}
	if err := json.Unmarshal([]byte(r.Lines), &rep.Lines); err != nil {
		return nil, errors.Wrapf(err, "decode lines of report %s", r.ID)
	}
	return rep, nil
}
