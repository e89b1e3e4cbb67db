package seeder

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/restoapp/pos/internal/config"
	"github.com/restoapp/pos/internal/entity"
	menurepo "github.com/restoapp/pos/internal/repository/menu"
	tablerepo "github.com/restoapp/pos/internal/repository/table"
	userrepo "github.com/restoapp/pos/internal/repository/user"
	"github.com/restoapp/pos/internal/service/auth"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder provisions the floor, default staff, and a starter menu for
// local/dev setups. Every insert is conflict-tolerant, so re-running the
// seeder is harmless.
type Seeder struct {
	tables *tablerepo.Repository
	users  *userrepo.Repository
	menu   *menurepo.Repository
	cfg    config.Config
	logger *zap.Logger
}

// New constructs a Seeder over the repositories.
func New(tables *tablerepo.Repository, users *userrepo.Repository, menu *menurepo.Repository, cfg config.Config, logger *zap.Logger) *Seeder {
	return &Seeder{
		tables: tables,
		users:  users,
		menu:   menu,
		cfg:    cfg,
		logger: logger,
	}
}

// All runs every seeder.
func (s *Seeder) All(ctx context.Context) error {
	if err := s.Tables(ctx); err != nil {
		return err
	}
	if err := s.Users(ctx); err != nil {
		return err
	}
	return s.Menu(ctx)
}

// Tables provisions numbered tables 1..TableCount, all free.
func (s *Seeder) Tables(ctx context.Context) error {
	for n := 1; n <= s.cfg.POS.TableCount; n++ {
		tbl := &entity.Table{Number: n, Status: entity.TableFree}
		if err := s.tables.Create(ctx, tbl); err != nil {
			return err
		}
	}
	s.logger.Info("seeded tables", zap.Int("count", s.cfg.POS.TableCount))
	return nil
}

// Users provisions one default account per role. Passwords match usernames
// and are meant to be rotated immediately in any real deployment.
func (s *Seeder) Users(ctx context.Context) error {
	defaults := []entity.User{
		{Username: "waiter", Role: entity.RoleWaiter},
		{Username: "kitchen", Role: entity.RoleKitchen},
		{Username: "cashier", Role: entity.RoleCashier},
	}
	for i := range defaults {
		usr := defaults[i]
		usr.PasswordHash = auth.HashPassword(usr.Username)
		if err := s.users.Create(ctx, &usr, true); err != nil {
			return err
		}
	}
	s.logger.Info("seeded users", zap.Int("count", len(defaults)))
	return nil
}

// Menu provisions a small starter menu when it is empty.
func (s *Seeder) Menu(ctx context.Context) error {
	existing, err := s.menu.ListAvailable(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.logger.Info("menu already seeded; skipping")
		return nil
	}

	samples := []entity.MenuItem{
		{Category: "Starters", Name: "Guacamole", Price: 6.50, Available: true},
		{Category: "Starters", Name: "Nachos", Price: 7.00, Available: true},
		{Category: "Mains", Name: "Tacos al Pastor", Price: 11.50, Available: true},
		{Category: "Mains", Name: "Quesadilla", Price: 9.00, Available: true},
		{Category: "Mains", Name: "Enchiladas Verdes", Price: 12.00, Available: true},
		{Category: "Drinks", Name: "Horchata", Price: 3.50, Available: true},
		{Category: "Drinks", Name: "Agua de Jamaica", Price: 3.00, Available: true},
		{Category: "Desserts", Name: "Flan", Price: 5.00, Available: true},
	}
	for i := range samples {
		item := samples[i]
		if err := s.menu.Create(ctx, &item); err != nil {
			return err
		}
	}
	s.logger.Info("seeded menu", zap.Int("count", len(samples)))
	return nil
}
