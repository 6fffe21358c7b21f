package identity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// AccountKind distinguishes the two account tables.
type AccountKind string

const (
	KindPatient   AccountKind = "patient"
	KindTherapist AccountKind = "therapist"
)

type Patient struct {
	ID        uuid.UUID
	Email     string
	Name      *string
	Role      Role
	Profile   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Therapist struct {
	ID          uuid.UUID
	Email       string
	Name        string
	License     *string
	Bio         *string
	Specialties []string
	PhotoURL    *string
	Approved    bool
	CanPostBlog bool
	Profile     json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Account is the resolved union of the two variants. Exactly one of Patient
// and Therapist is non-nil.
type Account struct {
	Kind      AccountKind
	Patient   *Patient
	Therapist *Therapist
}

func (a Account) ID() uuid.UUID {
	if a.Kind == KindPatient {
		return a.Patient.ID
	}
	return a.Therapist.ID
}

func (a Account) Email() string {
	if a.Kind == KindPatient {
		return a.Patient.Email
	}
	return a.Therapist.Email
}

func (a Account) DisplayName() string {
	if a.Kind == KindPatient {
		if a.Patient.Name != nil {
			return *a.Patient.Name
		}
		return ""
	}
	return a.Therapist.Name
}

// Actor is the descriptor the permission evaluator works with: a resolved
// identity plus the flags that matter for authorization. The zero value is an
// unresolved actor and is denied everything.
type Actor struct {
	Kind        AccountKind
	ID          uuid.UUID
	Role        Role // patients only
	Approved    bool // therapists only
	CanPostBlog bool // therapists only
}

func (a Actor) IsAdmin() bool {
	return a.Kind == KindPatient && a.Role == RoleAdmin
}

func (p *Patient) Actor() Actor {
	return Actor{Kind: KindPatient, ID: p.ID, Role: p.Role}
}

func (t *Therapist) Actor() Actor {
	return Actor{Kind: KindTherapist, ID: t.ID, Approved: t.Approved, CanPostBlog: t.CanPostBlog}
}

func (a Account) Actor() Actor {
	if a.Kind == KindPatient {
		return a.Patient.Actor()
	}
	return a.Therapist.Actor()
}
