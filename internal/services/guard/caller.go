package guard

import (
	"time"

	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/services/auth"
)

// Caller is the resolved identity behind a request. The set of
// implementations is closed; dispatch with a type switch.
type Caller interface {
	Subject() string
	caller()
}

// SuperAdmin has unrestricted access to every competition
type SuperAdmin struct {
	AccountID model.AccountID
}

// Admin must be assigned to the competition and hold a fresh credential
type Admin struct {
	AccountID model.AccountID
	IssuedAt  time.Time
}

// Judge may write scores only within its own panel seat
type Judge struct {
	JudgeID model.JudgeID
}

// Coach is authorized per operation
type Coach struct {
	AccountID model.AccountID
}

// Player is authorized per operation
type Player struct {
	AccountID model.AccountID
}

// Anonymous is a caller without a credential; read-only
type Anonymous struct{}

func (c SuperAdmin) Subject() string { return string(c.AccountID) }
func (c Admin) Subject() string      { return string(c.AccountID) }
func (c Judge) Subject() string      { return string(c.JudgeID) }
func (c Coach) Subject() string      { return string(c.AccountID) }
func (c Player) Subject() string     { return string(c.AccountID) }
func (Anonymous) Subject() string    { return "" }

func (SuperAdmin) caller() {}
func (Admin) caller()      {}
func (Judge) caller()      {}
func (Coach) caller()      {}
func (Player) caller()     {}
func (Anonymous) caller()  {}

// CallerFromClaims maps verified token claims to a caller. Nil claims yield
// Anonymous.
func CallerFromClaims(claims *auth.Claims) (Caller, error) {
	if claims == nil {
		return Anonymous{}, nil
	}

	switch claims.Role {
	case auth.RoleSuperAdmin:
		return SuperAdmin{AccountID: model.AccountID(claims.Subject)}, nil
	case auth.RoleAdmin:
		var issued time.Time
		if claims.IssuedAt != nil {
			issued = claims.IssuedAt.Time
		}
		return Admin{AccountID: model.AccountID(claims.Subject), IssuedAt: issued}, nil
	case auth.RoleJudge:
		return Judge{JudgeID: model.JudgeID(claims.Subject)}, nil
	case auth.RoleCoach:
		return Coach{AccountID: model.AccountID(claims.Subject)}, nil
	case auth.RolePlayer:
		return Player{AccountID: model.AccountID(claims.Subject)}, nil
	default:
		return nil, auth.ErrInvalidToken
	}
}

// IsAdministrator reports whether the caller may run admin scoring workflows
func IsAdministrator(c Caller) bool {
	switch c.(type) {
	case SuperAdmin, Admin:
		return true
	default:
		return false
	}
}
