package auth

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/restoapp/pos/internal/entity"
	repo "github.com/restoapp/pos/internal/repository/user"
	"github.com/restoapp/pos/pkg/errorbank"
)

type fakeGateway struct {
	users  map[int64]*entity.User
	nextID int64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{users: map[int64]*entity.User{}}
}

func (f *fakeGateway) List(context.Context) ([]entity.User, error) {
	var out []entity.User
	for id := int64(1); id <= f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeGateway) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeGateway) UsernameTaken(_ context.Context, username string, excludeID int64) (bool, error) {
	for _, u := range f.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGateway) Create(_ context.Context, usr *entity.User, _ bool) error {
	f.nextID++
	usr.ID = f.nextID
	cp := *usr
	f.users[usr.ID] = &cp
	return nil
}

func (f *fakeGateway) Update(_ context.Context, usr *entity.User) error {
	if _, ok := f.users[usr.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *usr
	f.users[usr.ID] = &cp
	return nil
}

func (f *fakeGateway) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func TestPasswordHashing(t *testing.T) {
	hash := HashPassword("hunter2")
	if !strings.Contains(hash, "$") {
		t.Fatalf("digest carries no salt: %s", hash)
	}
	if !VerifyPassword(hash, "hunter2") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "hunter3") {
		t.Fatal("wrong password accepted")
	}
	if VerifyPassword("garbage", "hunter2") {
		t.Fatal("unsalted digest accepted")
	}
	if HashPassword("hunter2") == hash {
		t.Fatal("two digests of the same password share a salt")
	}
}

func TestLogin(t *testing.T) {
	gw := newFakeGateway()
	svc := NewService(gw, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "ana", "secret", entity.RoleWaiter); err != nil {
		t.Fatalf("create: %v", err)
	}

	usr, err := svc.Login(ctx, "ana", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if usr.Role != entity.RoleWaiter {
		t.Fatalf("role = %s", usr.Role)
	}

	// Wrong password and unknown user are indistinguishable.
	if _, err := svc.Login(ctx, "ana", "wrong"); !errorbank.IsKind(err, errorbank.KindBadRequest) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "secret"); !errorbank.IsKind(err, errorbank.KindBadRequest) {
		t.Fatalf("unknown user: got %v", err)
	}
	if _, err := svc.Login(ctx, "", ""); !errorbank.IsKind(err, errorbank.KindBadRequest) {
		t.Fatalf("empty credentials: got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	gw := newFakeGateway()
	svc := NewService(gw, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "ana", "secret", entity.Role("boss")); !errorbank.IsKind(err, errorbank.KindBadRequest) {
		t.Fatalf("unknown role: got %v", err)
	}
	if _, err := svc.Create(ctx, "", "secret", entity.RoleWaiter); !errorbank.IsKind(err, errorbank.KindBadRequest) {
		t.Fatalf("empty username: got %v", err)
	}

	if _, err := svc.Create(ctx, "ana", "secret", entity.RoleWaiter); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "ana", "other", entity.RoleCashier); !errorbank.IsKind(err, errorbank.KindConflict) {
		t.Fatalf("duplicate username: got %v", err)
	}
}

func TestUpdateKeepsDigestWhenPasswordEmpty(t *testing.T) {
	gw := newFakeGateway()
	svc := NewService(gw, zap.NewNop())
	ctx := context.Background()

	usr, err := svc.Create(ctx, "ana", "secret", entity.RoleWaiter)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, usr.ID, "ana", "", entity.RoleCashier); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.Login(ctx, "ana", "secret"); err != nil {
		t.Fatalf("old password no longer works: %v", err)
	}

	if _, err := svc.Update(ctx, usr.ID, "ana", "rotated", entity.RoleCashier); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, err := svc.Login(ctx, "ana", "rotated"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
	if _, err := svc.Login(ctx, "ana", "secret"); err == nil {
		t.Fatal("old password still accepted after rotation")
	}
}

func TestDelete(t *testing.T) {
	gw := newFakeGateway()
	svc := NewService(gw, zap.NewNop())
	ctx := context.Background()

	usr, err := svc.Create(ctx, "ana", "secret", entity.RoleWaiter)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, usr.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, usr.ID); !errorbank.IsKind(err, errorbank.KindNotFound) {
		t.Fatalf("second delete: got %v", err)
	}
}
