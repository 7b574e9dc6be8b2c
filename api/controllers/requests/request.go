package requests

// CreateRequest is the wizard submission that opens an access transaction.
type CreateRequest struct {
	AssetID       string `json:"asset_id" validate:"required,uuid"`
	SubjectOrgID  string `json:"subject_org_id" validate:"required,uuid"`
	HolderOrgID   string `json:"holder_org_id" validate:"required,uuid"`
	Purpose       string `json:"purpose" validate:"required,min=10,max=500"`
	Justification string `json:"justification" validate:"required,min=20,max=1000"`
}

// TransitionRequest is an approval decision on a pending transaction.
type TransitionRequest struct {
	Action string `json:"action" validate:"required,oneof=pre_approve approve deny"`
	Notes  string `json:"notes" validate:"omitempty,max=2000"`
}
