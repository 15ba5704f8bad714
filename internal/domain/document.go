package domain

import (
	"fmt"
	"time"
)

// DocumentStatus represents the lifecycle status of a contract document
type DocumentStatus string

const (
	DocumentStatusActive     DocumentStatus = "Active"
	DocumentStatusRenewalDue DocumentStatus = "Renewal Due"
	DocumentStatusExpired    DocumentStatus = "Expired"
)

// RiskScore represents the assessed risk level of a contract
type RiskScore string

const (
	RiskScoreLow    RiskScore = "Low"
	RiskScoreMedium RiskScore = "Medium"
	RiskScoreHigh   RiskScore = "High"
)

// Document represents an uploaded contract. Created on successful ingestion;
// status and risk score are only mutated by the lifecycle/analysis step,
// never by the owner directly.
type Document struct {
	ID         string
	UserID     string
	Filename   string
	UploadedOn time.Time
	ExpiryDate *time.Time
	Status     DocumentStatus
	RiskScore  RiskScore
}

// NewDocument creates a new Document instance
func NewDocument(id, userID, filename string, status DocumentStatus, riskScore RiskScore, uploadedOn time.Time) *Document {
	return &Document{
		ID:         id,
		UserID:     userID,
		Filename:   filename,
		UploadedOn: uploadedOn,
		ExpiryDate: nil,
		Status:     status,
		RiskScore:  riskScore,
	}
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.UserID == "" {
		return fmt.Errorf("document UserID is required")
	}

	if d.Filename == "" {
		return fmt.Errorf("document Filename is required")
	}

	if !isValidDocumentStatus(d.Status) {
		return fmt.Errorf("document Status is invalid: %s", d.Status)
	}

	if !isValidRiskScore(d.RiskScore) {
		return fmt.Errorf("document RiskScore is invalid: %s", d.RiskScore)
	}

	return nil
}

// isValidDocumentStatus checks if a DocumentStatus is valid
func isValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusActive, DocumentStatusRenewalDue, DocumentStatusExpired:
		return true
	}
	return false
}

// isValidRiskScore checks if a RiskScore is valid
func isValidRiskScore(r RiskScore) bool {
	switch r {
	case RiskScoreLow, RiskScoreMedium, RiskScoreHigh:
		return true
	}
	return false
}
