package domain

import dErrors "chaincomply/pkg/domain-errors"

// EntityType classifies a registering market participant. The type drives
// which registration form sections apply, which normalizer produces scoring
// facts, and which scoring profile the risk engine applies.
//
// Invariant: the value must be one of the supported entity types. Construct
// via ParseEntityType at trust boundaries.
type EntityType string

// Supported entity types.
const (
	EntityTypeExchange         EntityType = "exchange"
	EntityTypeStablecoinIssuer EntityType = "stablecoin_issuer"
	EntityTypeDeFiProtocol     EntityType = "defi_protocol"
	EntityTypeNFTMarketplace   EntityType = "nft_marketplace"
	EntityTypeFund             EntityType = "fund"
	EntityTypeTokenIssuer      EntityType = "token_issuer"
)

// validEntityTypes is the single source of truth for supported entity types.
var validEntityTypes = map[EntityType]bool{
	EntityTypeExchange:         true,
	EntityTypeStablecoinIssuer: true,
	EntityTypeDeFiProtocol:     true,
	EntityTypeNFTMarketplace:   true,
	EntityTypeFund:             true,
	EntityTypeTokenIssuer:      true,
}

// EntityTypes returns all supported entity types in a stable order, for form
// rendering and profile registration.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityTypeExchange,
		EntityTypeStablecoinIssuer,
		EntityTypeDeFiProtocol,
		EntityTypeNFTMarketplace,
		EntityTypeFund,
		EntityTypeTokenIssuer,
	}
}

// ParseEntityType constructs an EntityType from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseEntityType(s string) (EntityType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "entity_type cannot be empty")
	}
	t := EntityType(s)
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported entity_type %q", s)
	}
	return t, nil
}

// IsValid checks if the entity type is one of the supported enum values.
func (t EntityType) IsValid() bool {
	return validEntityTypes[t]
}

// String returns the string representation of the entity type.
func (t EntityType) String() string {
	return string(t)
}
