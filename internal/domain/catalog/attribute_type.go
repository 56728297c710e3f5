package catalog

import (
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// AttributeValueType is the kind of value a product attribute holds
type AttributeValueType string

const (
	AttributeValueString  AttributeValueType = "string"
	AttributeValueNumber  AttributeValueType = "number"
	AttributeValueBoolean AttributeValueType = "boolean"
)

// IsValid checks if the value type is valid
func (t AttributeValueType) IsValid() bool {
	switch t {
	case AttributeValueString, AttributeValueNumber, AttributeValueBoolean:
		return true
	}
	return false
}

// AttributeType declares a product attribute such as "color" or "weight"
type AttributeType struct {
	ID        uint
	Name      string
	ValueType AttributeValueType
}

// NewAttributeType creates an attribute type
func NewAttributeType(name string, valueType AttributeValueType) (*AttributeType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Attribute type name cannot be empty")
	}
	if !valueType.IsValid() {
		return nil, shared.NewDomainError("INVALID_VALUE_TYPE", fmt.Sprintf("Invalid attribute value type: %s", valueType))
	}
	return &AttributeType{Name: name, ValueType: valueType}, nil
}

// AttributeTypeRepository persists attribute types
type AttributeTypeRepository interface {
	shared.BulkRepository[AttributeType]
}
