package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"go-siren/types"
)

const measurementsCollection = "measurements"

// Store is the append-only measurement log, keyed by user.
type Store struct {
	client *firestore.Client
}

func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

// SaveMeasurement appends one audit record and returns its document ID.
func (s *Store) SaveMeasurement(ctx context.Context, m *types.Measurement) (string, error) {
	if m.PrivyUserID == "" {
		return "", fmt.Errorf("measurement is missing privyUserId")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt == "" {
		m.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	_, err := s.client.Collection(measurementsCollection).Doc(m.ID).Set(ctx, m)
	if err != nil {
		return "", fmt.Errorf("saving measurement %s: %w", m.ID, err)
	}
	return m.ID, nil
}

// GetMeasurementsByUser returns a user's audit records, newest first.
func (s *Store) GetMeasurementsByUser(ctx context.Context, privyUserID string) ([]types.Measurement, error) {
	iter := s.client.Collection(measurementsCollection).
		Where("privyUserId", "==", privyUserID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var measurements []types.Measurement
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating measurements for %s: %w", privyUserID, err)
		}

		var m types.Measurement
		if err := doc.DataTo(&m); err != nil {
			log.Printf("Warning: skipping malformed measurement %s: %v", doc.Ref.ID, err)
			continue
		}
		m.ID = doc.Ref.ID
		measurements = append(measurements, m)
	}

	return measurements, nil
}
