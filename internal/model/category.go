package model

import (
	"fmt"
	"slices"
	"strings"
)

// Gender of a scoring category
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// AgeGroup within a gender
type AgeGroup string

// ageGroups lists the valid age groups for each gender, youngest first
var ageGroups = map[Gender][]AgeGroup{
	GenderMale:   {"U10", "U12", "U14", "U17", "Open"},
	GenderFemale: {"U10", "U12", "U14", "U16", "Open"},
}

// AgeGroupsFor returns the valid age groups for a gender
func AgeGroupsFor(g Gender) []AgeGroup {
	return slices.Clone(ageGroups[g])
}

// Valid reports whether g is a known gender
func (g Gender) Valid() bool {
	_, ok := ageGroups[g]
	return ok
}

// Category identifies one scoring category: a gender and one of its age groups
type Category struct {
	Gender   Gender
	AgeGroup AgeGroup
}

// NewCategory validates and returns a category
func NewCategory(gender Gender, ageGroup AgeGroup) (Category, error) {
	c := Category{Gender: gender, AgeGroup: ageGroup}
	if err := c.Validate(); err != nil {
		return Category{}, err
	}
	return c, nil
}

// Validate checks that the age group belongs to the gender
func (c Category) Validate() error {
	groups, ok := ageGroups[c.Gender]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidGender, c.Gender)
	}
	if !slices.Contains(groups, c.AgeGroup) {
		return fmt.Errorf("%w: %q for %s", ErrInvalidAgeGroup, c.AgeGroup, c.Gender)
	}
	return nil
}

// RoomID returns the real-time room key for this category
func (c Category) RoomID() RoomID {
	return RoomID(roomPrefix + string(c.Gender) + "_" + string(c.AgeGroup))
}

func (c Category) String() string {
	return string(c.Gender) + "/" + string(c.AgeGroup)
}

// RoomID names a real-time category room, e.g. "scoring_Male_U14"
type RoomID string

const roomPrefix = "scoring_"

// ParseRoomID extracts and validates the category encoded in a room id
func ParseRoomID(id RoomID) (Category, error) {
	rest, ok := strings.CutPrefix(string(id), roomPrefix)
	if !ok {
		return Category{}, ErrInvalidRoom
	}
	gender, ageGroup, ok := strings.Cut(rest, "_")
	if !ok {
		return Category{}, ErrInvalidRoom
	}
	c, err := NewCategory(Gender(gender), AgeGroup(ageGroup))
	if err != nil {
		return Category{}, ErrInvalidRoom
	}
	return c, nil
}
