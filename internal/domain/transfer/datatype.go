// Package transfer holds the vocabulary of the bulk import/export engine:
// the closed set of collection names, their dependency order, the records
// moved between archive and store, and the Importer/Exporter contract each
// collection implements.
package transfer

import (
	"fmt"
	"sort"
	"strings"
)

// DataType names one transferable collection.
type DataType string

const (
	Settings        DataType = "settings"
	Users           DataType = "users"
	Wishlists       DataType = "wishlists"
	Products        DataType = "products"
	ProductPhotos   DataType = "productPhotos"
	Categories      DataType = "categories"
	DeliveryMethods DataType = "deliveryMethods"
	PaymentMethods  DataType = "paymentMethods"
	Orders          DataType = "orders"
	Returns         DataType = "returns"
	Pages           DataType = "pages"
	AttributeTypes  DataType = "attributeTypes"
)

// String implements fmt.Stringer
func (t DataType) String() string {
	return string(t)
}

// Dependency is one entry of the dependency order.
type Dependency struct {
	Type      DataType   `json:"name"`
	DependsOn []DataType `json:"dependencies"`
}

// dependencyOrder lists every DataType after all of its dependencies.
// Imports walk it forwards, clears walk it backwards.
var dependencyOrder = []Dependency{
	{Type: Settings},
	{Type: Users},
	{Type: Products},
	{Type: ProductPhotos, DependsOn: []DataType{Products}},
	{Type: Categories, DependsOn: []DataType{Products}},
	{Type: AttributeTypes},
	{Type: DeliveryMethods},
	{Type: PaymentMethods},
	{Type: Orders, DependsOn: []DataType{Users, Products, DeliveryMethods, PaymentMethods}},
	{Type: Returns, DependsOn: []DataType{Orders}},
	{Type: Wishlists, DependsOn: []DataType{Users, Products}},
	{Type: Pages},
}

// dependencies and aliases are derived from dependencyOrder.
var (
	dependencies = map[DataType][]DataType{}
	aliases      = map[string]DataType{}
)

func init() {
	if err := ValidateOrder(dependencyOrder); err != nil {
		panic(err)
	}
	for _, d := range dependencyOrder {
		dependencies[d.Type] = d.DependsOn
		aliases[string(d.Type)] = d.Type
		aliases[enumName(d.Type)] = d.Type
	}
}

// enumName is the exported spelling of a DataType, e.g. "ProductPhotos".
func enumName(t DataType) string {
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

// DependencyOrder returns a copy of the fixed dependency-first order.
func DependencyOrder() []Dependency {
	out := make([]Dependency, len(dependencyOrder))
	for i, d := range dependencyOrder {
		out[i] = Dependency{Type: d.Type, DependsOn: append([]DataType(nil), d.DependsOn...)}
	}
	return out
}

// ParseDataType resolves a collection name given either as the canonical
// value ("productPhotos") or its enum alias ("ProductPhotos").
func ParseDataType(name string) (DataType, bool) {
	t, ok := aliases[name]
	return t, ok
}

// IsKnownType reports whether name identifies a collection.
func IsKnownType(name string) bool {
	_, ok := ParseDataType(name)
	return ok
}

// DependenciesOf returns the direct dependencies of t.
func DependenciesOf(t DataType) []DataType {
	return dependencies[t]
}

// CheckDependencies verifies that every name is a known collection named
// once, and that each collection's dependencies are part of the same set. Names are checked
// in sorted order so the reported failure is stable.
func CheckDependencies(names []string) error {
	present := make(map[DataType]bool, len(names))
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	spelling := make(map[DataType]string, len(names))
	for _, name := range sorted {
		t, ok := ParseDataType(name)
		if !ok {
			return NewGenericError(fmt.Sprintf("%q is not recognized data type", name))
		}
		if prev, dup := spelling[t]; dup {
			return NewGenericError(fmt.Sprintf("%q and %q name the same data type", prev, name))
		}
		spelling[t] = name
		present[t] = true
	}
	for _, name := range sorted {
		t, _ := ParseDataType(name)
		for _, dep := range dependencies[t] {
			if !present[dep] {
				return NewGenericError(fmt.Sprintf("%q depends on %q", name, string(dep)))
			}
		}
	}
	return nil
}

// Filter returns the dependency order restricted to the given names.
// Unknown names are ignored.
func Filter(names []string) []DataType {
	wanted := make(map[DataType]bool, len(names))
	for _, name := range names {
		if t, ok := ParseDataType(name); ok {
			wanted[t] = true
		}
	}
	out := make([]DataType, 0, len(wanted))
	for _, d := range dependencyOrder {
		if wanted[d.Type] {
			out = append(out, d.Type)
		}
	}
	return out
}

// ValidateOrder checks that order lists each DataType exactly once and after
// all of its dependencies.
func ValidateOrder(order []Dependency) error {
	seen := make(map[DataType]bool, len(order))
	for _, d := range order {
		if seen[d.Type] {
			return fmt.Errorf("data type %q listed twice", d.Type)
		}
		for _, dep := range d.DependsOn {
			if !seen[dep] {
				return fmt.Errorf("data type %q is listed before its dependency %q", d.Type, dep)
			}
		}
		seen[d.Type] = true
	}
	for _, t := range AllTypes() {
		if !seen[t] {
			return fmt.Errorf("data type %q is missing from the dependency order", t)
		}
	}
	return nil
}

// AllTypes enumerates the DataType constants.
func AllTypes() []DataType {
	return []DataType{
		Settings, Users, Wishlists, Products, ProductPhotos, Categories,
		DeliveryMethods, PaymentMethods, Orders, Returns, Pages, AttributeTypes,
	}
}
