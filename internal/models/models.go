package models

import "time"

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Project struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	OwnerID     int       `json:"-"`
}

type ProjectMember struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"-"`
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Progress    int        `json:"progress"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ProjectID   int        `json:"-"`
	AssignedTo  *int       `json:"assigned_to"`
}

type Note struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ProjectID int       `json:"-"`
	UserID    int       `json:"user_id"`
}

type ProjectFile struct {
	ID         int       `json:"id"`
	Filename   string    `json:"filename"`
	FilePath   string    `json:"-"`
	UploadedAt time.Time `json:"uploaded_at"`
	ProjectID  int       `json:"-"`
}

// ChatMessage is a project chat entry; Username is joined in for display.
type ChatMessage struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	ProjectID int       `json:"-"`
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"`
}

// Meeting keeps date and time as the plain strings clients send; the
// backend never computes with them.
type Meeting struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Duration    int       `json:"duration"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	ProjectID   int       `json:"-"`
}

type CalendarEvent struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	EventType   string     `json:"type"`
	CreatedAt   time.Time  `json:"created_at"`
	UserID      int        `json:"-"`
}
