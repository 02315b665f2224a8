package store

import "time"

// Task is a single to-do item. A task may reference a group through
// GroupID; the reference is weak and may dangle after the group is deleted.
type Task struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	WhyItMatters     string    `json:"whyItMatters,omitempty"`
	DefinitionOfDone string    `json:"definitionOfDone,omitempty"`
	DueDate          string    `json:"dueDate,omitempty"`
	FundsNeeded      float64   `json:"fundsNeeded,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	GroupID          string    `json:"groupId,omitempty"`
}

// Group is a named bucket a task may belong to. The fields beyond Name and
// Color are optional annotations; deleting a group neither deletes nor
// reassigns the tasks referencing it.
type Group struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color,omitempty"`
	RoleID       string `json:"roleId,omitempty"`
	Notes        string `json:"notes,omitempty"`
	IsComplex    bool   `json:"isComplex,omitempty"`
	IsRemarkable bool   `json:"isRemarkable,omitempty"`
	IsRepetitive bool   `json:"isRepetitive,omitempty"`
}

// Role is a self-identification tag on the profile. Archiving is a
// reversible soft-removal; delete is permanent. ArchivedAt is set exactly
// when Archived is true.
type Role struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Color      string     `json:"color"`
	Archived   bool       `json:"archived"`
	CreatedAt  time.Time  `json:"createdAt"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
}

// Profile is the singleton user profile.
type Profile struct {
	Bio   string `json:"bio"`
	Roles []Role `json:"roles"`
}

// Theme is the UI color scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Settings is the singleton application settings record. Only the committed
// copy is ever persisted; the draft lives in memory.
type Settings struct {
	APIKey string `json:"apiKey,omitempty"`
	Theme  Theme  `json:"theme"`
}

// DefaultSettings returns the factory settings.
func DefaultSettings() Settings {
	return Settings{Theme: ThemeSystem}
}
