package domain

import (
	"time"

	"github.com/google/uuid"
)

// TreasuryContributionLabel is the stage_name recorded on every member contribution.
const TreasuryContributionLabel = "Пополнение казны"

// UnknownContributor is shown when the contributor's profile is gone.
const UnknownContributor = "Unknown"

type TreasuryTransaction struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	TeamID      uuid.UUID  `db:"team_id" json:"team_id"`
	UserID      *uuid.UUID `db:"user_id" json:"user_id"`
	Amount      int64      `db:"amount" json:"amount"`
	StageName   string     `db:"stage_name" json:"stage_name"`
	Description string     `db:"description" json:"description"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`

	ContributorName string `json:"contributor_name"`
}
