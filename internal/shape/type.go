package shape

import (
	"fmt"
	"strings"
)

// Type identifies a concrete shape kind. Ids are grouped into family blocks
// so new kinds can be added inside a block without renumbering the others.
type Type int

// Convex shapes
const (
	TypeBox Type = iota
	TypeTriangle
	TypeTetrahedral
	TypeConvexTriangleMesh
	TypeConvexHull
	TypeConvexPointCloud
	TypeSphere
	TypeMultiSphere
	TypeCapsule
	TypeCone
	TypeCylinder
	TypeCustomConvex

	convexEnd
)

// Concave shapes
const (
	TypeTriangleMesh Type = iota + 100
	TypeScaledTriangleMesh
	TypeTerrain
	TypeCustomConcave

	concaveEnd
)

const (
	TypeStaticPlane Type = 200
	TypeCompound    Type = 300
	TypeSoftBody    Type = 400
	TypeEmpty       Type = 500

	// MaxType is one past the largest id in use
	MaxType Type = 501
)

// Family is the primary category of a shape type
type Family int

const (
	FamilyNone Family = iota
	FamilyConvex
	FamilyConcave
	FamilyInfinite
	FamilyCompound
	FamilySoftBody
)

var familyNames = [...]string{
	FamilyNone:     "none",
	FamilyConvex:   "convex",
	FamilyConcave:  "concave",
	FamilyInfinite: "infinite",
	FamilyCompound: "compound",
	FamilySoftBody: "softbody",
}

func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return fmt.Sprintf("Family(%d)", int(f))
	}
	return familyNames[f]
}

// IsConvex reports whether t is a convex primitive
func IsConvex(t Type) bool {
	return t >= TypeBox && t < convexEnd
}

// IsConcave reports whether t is a concave (triangle based) shape.
// Static planes are classified as infinite, not concave.
func IsConcave(t Type) bool {
	return t >= TypeTriangleMesh && t < concaveEnd
}

func IsInfinite(t Type) bool {
	return t == TypeStaticPlane
}

func IsCompound(t Type) bool {
	return t == TypeCompound
}

func IsSoftBody(t Type) bool {
	return t == TypeSoftBody
}

// Family returns the single family t belongs to. Unknown ids and
// TypeEmpty report FamilyNone.
func (t Type) Family() Family {
	switch {
	case IsConvex(t):
		return FamilyConvex
	case IsConcave(t):
		return FamilyConcave
	case IsInfinite(t):
		return FamilyInfinite
	case IsCompound(t):
		return FamilyCompound
	case IsSoftBody(t):
		return FamilySoftBody
	default:
		return FamilyNone
	}
}

var typeNames = map[Type]string{
	TypeBox:                "Box",
	TypeTriangle:           "Triangle",
	TypeTetrahedral:        "Tetrahedral",
	TypeConvexTriangleMesh: "ConvexTriangleMesh",
	TypeConvexHull:         "ConvexHull",
	TypeConvexPointCloud:   "ConvexPointCloud",
	TypeSphere:             "Sphere",
	TypeMultiSphere:        "MultiSphere",
	TypeCapsule:            "Capsule",
	TypeCone:               "Cone",
	TypeCylinder:           "Cylinder",
	TypeCustomConvex:       "CustomConvex",
	TypeTriangleMesh:       "TriangleMesh",
	TypeScaledTriangleMesh: "ScaledTriangleMesh",
	TypeTerrain:            "Terrain",
	TypeCustomConcave:      "CustomConcave",
	TypeStaticPlane:        "StaticPlane",
	TypeCompound:           "Compound",
	TypeSoftBody:           "SoftBody",
	TypeEmpty:              "Empty",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType looks up a type by name, ignoring case
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return TypeEmpty, fmt.Errorf("unknown shape type %q", name)
}

// Types lists every known shape type in ascending id order
func Types() []Type {
	types := make([]Type, 0, len(typeNames))
	for t := TypeBox; t < MaxType; t++ {
		if _, ok := typeNames[t]; ok {
			types = append(types, t)
		}
	}
	return types
}
