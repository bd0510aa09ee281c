package db

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedOptions controls the size of the demo dataset.
type SeedOptions struct {
	Users int
	// Points is the signup bonus every user starts with.
	Points int64
	// Reset wipes every table first.
	Reset bool
	// RandSeed makes the swipe pattern reproducible; zero picks one.
	RandSeed int64
}

// DefaultSeedOptions is what the dev server seeds on startup.
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{Users: 20, Points: 30, Reset: true}
}

// SeedTestData populates the database with demo users, balances, swipes and
// matches.
//
// Behavior:
//  1. Optionally clears every table.
//  2. Creates users with bcrypt-hashed passwords ("password").
//  3. Credits each user a bonus entry, so balances equal their entry sums.
//  4. Generates swipes with ~70% likes; every 3rd pair is made mutual and
//     gets its match and match conversation.
func SeedTestData(database *gorm.DB, opts SeedOptions, log *slog.Logger) error {
	if opts.Users < 2 {
		return fmt.Errorf("seed needs at least 2 users, got %d", opts.Users)
	}
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))

	return database.Transaction(func(tx *gorm.DB) error {
		if opts.Reset {
			if err := resetTables(tx); err != nil {
				return err
			}
			log.Info("cleared existing data")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		ids := make([]uint64, 0, opts.Users)
		for i := 1; i <= opts.Users; i++ {
			user := User{
				Username:     fmt.Sprintf("user%d", i),
				Email:        fmt.Sprintf("user%d@example.com", i),
				PasswordHash: string(hash),
				Active:       true,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
				return fmt.Errorf("failed to seed user: %w", err)
			}
			if user.ID == 0 {
				if err := tx.Where("username = ?", user.Username).First(&user).Error; err != nil {
					return fmt.Errorf("failed to load user %s: %w", user.Username, err)
				}
			}
			ids = append(ids, user.ID)

			if opts.Points > 0 {
				if err := seedBonus(tx, user.ID, opts.Points); err != nil {
					return err
				}
			}
		}
		log.Info("seeded users", "count", len(ids), "points", opts.Points)

		matches := 0
		for n, actorID := range ids {
			for j := 0; j < 12; j++ {
				targetID := ids[r.Intn(len(ids))]
				if targetID == actorID {
					continue
				}
				action := ActionPass
				if r.Intn(100) < 70 {
					action = ActionLike
				}
				if (n+j)%3 == 0 {
					action = ActionLike
					if err := seedSwipe(tx, targetID, actorID, ActionLike); err != nil {
						return err
					}
				}
				if err := seedSwipe(tx, actorID, targetID, action); err != nil {
					return err
				}
				if action == ActionLike && (n+j)%3 == 0 {
					created, err := seedMatch(tx, actorID, targetID)
					if err != nil {
						return err
					}
					if created {
						matches++
					}
				}
			}
		}
		log.Info("seeded swipes", "matches", matches)
		return nil
	})
}

func resetTables(tx *gorm.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[i]).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", models[i], err)
		}
	}
	switch tx.Dialector.Name() {
	case "mysql":
		tx.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		tx.Exec("DELETE FROM sqlite_sequence")
	}
	return nil
}

func seedBonus(tx *gorm.DB, userID uint64, points int64) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	entry := LedgerEntry{
		ID:        id.String(),
		UserID:    userID,
		Delta:     points,
		Kind:      EntryBonus,
		Reason:    "signup_bonus",
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to seed ledger entry: %w", err)
	}
	bal := LedgerBalance{UserID: userID, Balance: points, TotalEarned: points}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"balance":      gorm.Expr("ledger_balances.balance + ?", points),
			"total_earned": gorm.Expr("ledger_balances.total_earned + ?", points),
		}),
	}).Create(&bal).Error
}

func seedSwipe(tx *gorm.DB, actorID, targetID uint64, action string) error {
	swipe := Swipe{ActorID: actorID, TargetID: targetID, Action: action}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"action", "updated_at"}),
	}).Create(&swipe).Error
	if err != nil {
		return fmt.Errorf("failed to seed swipe: %w", err)
	}
	return tx.Create(&SwipeEvent{ActorID: actorID, TargetID: targetID, Action: action}).Error
}

func seedMatch(tx *gorm.DB, a, b uint64) (bool, error) {
	low, high := a, b
	if low > high {
		low, high = high, low
	}
	var existing int64
	if err := tx.Model(&Match{}).Where("user_low_id = ? AND user_high_id = ?", low, high).Count(&existing).Error; err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}
	conv := Conversation{Kind: KindMatch, UserLowID: low, UserHighID: high}
	if err := tx.Create(&conv).Error; err != nil {
		return false, fmt.Errorf("failed to seed conversation: %w", err)
	}
	m := Match{UserLowID: low, UserHighID: high, ConversationID: conv.ID}
	if err := tx.Create(&m).Error; err != nil {
		return false, fmt.Errorf("failed to seed match: %w", err)
	}
	return true, nil
}
