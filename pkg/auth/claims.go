package auth

import (
	"github.com/datalinea/dataspace-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   enums.MemberRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued by the upstream identity service.
type AccessTokenClaims struct {
	UserID uuid.UUID        `json:"user_id"`
	OrgID  uuid.UUID        `json:"org_id"`
	Role   enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}
