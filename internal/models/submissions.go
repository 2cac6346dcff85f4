package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrNoRecord = errors.New("models: no matching record found")

// Submission is an accepted form, as archived. Sensitive values hold a bcrypt hash.
type Submission struct {
	ID          uint      `gorm:"primaryKey"`
	Form        string    `gorm:"size:32;index"`
	ReferenceID int       `gorm:"index"`
	Payload     string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"index"`

	Fields map[string]string `gorm:"-"`
}

// MatchesSensitive checks plain against the stored hash of field.
func (s Submission) MatchesSensitive(field, plain string) bool {
	hash, ok := s.Fields[field]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

type SubmissionModel struct {
	DB *gorm.DB
	// Cost is the bcrypt cost for sensitive values; zero means bcrypt.DefaultCost.
	Cost int
}

func (m *SubmissionModel) Insert(ctx context.Context, form string, referenceID int, fields map[string]string, sensitive map[string]bool) (uint, error) {
	cost := m.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	stored := make(map[string]string, len(fields))
	for k, v := range fields {
		if !sensitive[k] {
			stored[k] = v
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(v), cost)
		if err != nil {
			return 0, fmt.Errorf("hash %s: %w", k, err)
		}
		stored[k] = string(hash)
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	s := Submission{
		Form:        form,
		ReferenceID: referenceID,
		Payload:     string(payload),
	}

	if err := m.DB.WithContext(ctx).Create(&s).Error; err != nil {
		return 0, fmt.Errorf("insert submission: %w", err)
	}

	return s.ID, nil
}

func (m *SubmissionModel) Get(ctx context.Context, id uint) (Submission, error) {
	var s Submission

	err := m.DB.WithContext(ctx).First(&s, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Submission{}, ErrNoRecord
		}
		return Submission{}, err
	}

	return s, s.decode()
}

// Latest returns up to n submissions, newest first.
func (m *SubmissionModel) Latest(ctx context.Context, n int) ([]Submission, error) {
	var out []Submission

	err := m.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(n).Find(&out).Error
	if err != nil {
		return nil, err
	}

	for i := range out {
		if err := out[i].decode(); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (s *Submission) decode() error {
	s.Fields = map[string]string{}
	if s.Payload == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s.Payload), &s.Fields); err != nil {
		return fmt.Errorf("decode submission %d: %w", s.ID, err)
	}
	return nil
}
