package dataset

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Dataset is the stored metadata of an uploaded dataset file. The record content itself is kept
// in the database, addressable through URL.
type Dataset struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func New(name string, userID string) Dataset {
	id := uuid.New()
	now := time.Now().UTC()

	return Dataset{
		ID:        id,
		Name:      name,
		UserID:    userID,
		URL:       ContentURL(id),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ContentURL gives the API path where a dataset's record content is served.
func ContentURL(id uuid.UUID) string {
	return fmt.Sprintf("/datasets/%s/content", id)
}

func (dataset Dataset) Validate() error {
	if dataset.ID == uuid.Nil {
		return errors.New("dataset ID is blank")
	}
	if dataset.Name == "" {
		return errors.New("dataset name is blank")
	}
	if dataset.UserID == "" {
		return errors.New("dataset has no owning user")
	}

	return nil
}
