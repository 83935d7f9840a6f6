package core

import (
	"strings"
	"time"
)

const (
	Projects Category = "projects"
	Today    Category = "today"
	Plans    Category = "plans"
	Debts    Category = "debts"
	Notes    Category = "notes"
	Money    Category = "money"
)

const (
	Active    Status = 0
	Completed Status = 1
)

// NoSubcat marks a partition without a sub-category.
const NoSubcat = "none"

// Common is the shared owner. Money logged under it is split between the participants.
const Common Owner = "common"

// CreatedAtLayout is the stored timestamp format. It carries no year.
const CreatedAtLayout = "02.01 15:04"

type (
	Category string

	Owner string

	Status int

	// Partition is the numbering scope of an entry.
	Partition struct {
		Category Category
		Subcat   string
	}

	Entry struct {
		ID         int64
		Category   Category
		Subcat     string
		Content    string
		Owner      Owner
		Status     Status
		CreatedAt  string
		TaskNumber int
	}

	// Participants names the two people sharing the tracker.
	Participants struct {
		A Owner
		B Owner
	}
)

var categories = []Category{Projects, Today, Plans, Debts, Notes, Money}

var planSubcats = []string{"week", "month", "year"}

// Categories returns every known category in menu order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// PlanSubcats returns the sub-categories of the plans category.
func PlanSubcats() []string {
	return append([]string(nil), planSubcats...)
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (s Status) Toggle() Status {
	if s == Completed {
		return Active
	}
	return Completed
}

func (s Status) String() string {
	if s == Completed {
		return "completed"
	}
	return "active"
}

// NewPartition builds a partition, mapping an empty subcat to NoSubcat.
func NewPartition(category Category, subcat string) Partition {
	subcat = strings.TrimSpace(subcat)
	if subcat == "" {
		subcat = NoSubcat
	}
	return Partition{Category: category, Subcat: subcat}
}

func (p Partition) Validate() error {
	if !p.Category.Valid() {
		return ErrInvalidCategory
	}
	if p.Category == Plans {
		for _, s := range planSubcats {
			if p.Subcat == s {
				return nil
			}
		}
		return ErrInvalidSubcat
	}
	if p.Subcat != NoSubcat {
		return ErrInvalidSubcat
	}
	return nil
}

func (p Partition) String() string {
	return string(p.Category) + "/" + p.Subcat
}

func (e Entry) Partition() Partition {
	return Partition{Category: e.Category, Subcat: e.Subcat}
}

func (e Entry) IsActive() bool {
	return e.Status == Active
}

// Owners returns the participants followed by the common owner.
func (p Participants) Owners() []Owner {
	return []Owner{p.A, p.B, Common}
}

// Has reports whether o is one of the two named participants.
func (p Participants) Has(o Owner) bool {
	return o == p.A || o == p.B
}

// ValidOwner reports whether o may own an entry.
func (p Participants) ValidOwner(o Owner) bool {
	return p.Has(o) || o == Common
}

func (p Participants) Validate() error {
	if strings.TrimSpace(string(p.A)) == "" || strings.TrimSpace(string(p.B)) == "" {
		return ErrInvalidOwner
	}
	if p.A == p.B || p.A == Common || p.B == Common {
		return ErrInvalidOwner
	}
	return nil
}

// FormatCreatedAt renders t in the stored timestamp format.
func FormatCreatedAt(t time.Time) string {
	return t.Format(CreatedAtLayout)
}
