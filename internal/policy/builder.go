package policy

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/datalinea/dataspace-backend/internal/grants"
	"github.com/datalinea/dataspace-backend/pkg/db/models"
)

// ActionUse is the only usage action this marketplace grants.
const ActionUse = "use"

// BuildInput carries everything the generator snapshots into a policy document.
type BuildInput struct {
	TransactionID uuid.UUID
	AssetID       uuid.UUID
	HolderOrgID   uuid.UUID
	ConsumerOrgID uuid.UUID
	Purpose       string
	Terms         grants.GrantTerms
}

// Build produces the immutable policy document for a new access transaction.
// The holder is the assigner, the consumer the assignee, and the resolved
// grant terms are copied in by value so later catalog edits never leak into
// an already-issued policy.
func Build(input BuildInput) (*models.PolicyDocument, error) {
	if input.TransactionID == uuid.Nil {
		return nil, fmt.Errorf("transaction id is required")
	}
	if input.AssetID == uuid.Nil {
		return nil, fmt.Errorf("asset id is required")
	}
	if input.HolderOrgID == uuid.Nil {
		return nil, fmt.Errorf("holder org id is required")
	}
	if input.ConsumerOrgID == uuid.Nil {
		return nil, fmt.Errorf("consumer org id is required")
	}
	purpose := strings.TrimSpace(input.Purpose)
	if purpose == "" {
		return nil, fmt.Errorf("purpose is required")
	}

	days := input.Terms.DurationDays
	if days <= 0 {
		days = grants.DefaultDurationDays
	}

	doc := &models.PolicyDocument{
		TransactionID:    input.TransactionID,
		AssetID:          input.AssetID,
		AssignerOrgID:    input.HolderOrgID,
		AssigneeOrgID:    input.ConsumerOrgID,
		Action:           ActionUse,
		Purpose:          purpose,
		ElapsedTimeLimit: FormatElapsedTime(days),
	}

	doc.Permissions = append(doc.Permissions, input.Terms.Permissions...)
	doc.Prohibitions = append(doc.Prohibitions, input.Terms.Prohibitions...)
	doc.Obligations = append(doc.Obligations, input.Terms.Obligations...)
	if input.Terms.ExternalTermsURL != nil {
		url := *input.Terms.ExternalTermsURL
		doc.ExternalTermsURL = &url
	}

	return doc, nil
}

// FormatElapsedTime renders the day count as an ISO-8601 duration (PnD).
func FormatElapsedTime(days int) string {
	return fmt.Sprintf("P%dD", days)
}
