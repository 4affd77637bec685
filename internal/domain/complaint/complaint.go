// Package complaint holds the append-only complaint and suggestion log.
package complaint

import "time"

// Complaint is one submitted complaint or suggestion. IDs are assigned
// sequentially from 1 and never reused.
type Complaint struct {
	ID       int       `json:"id"`
	UserID   int64     `json:"user_id"`
	UserName string    `json:"user_name"`
	Code     string    `json:"code,omitempty"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sent_at"`
}

// Log is the ordered complaint list.
type Log struct {
	Complaints []Complaint `json:"complaints"`
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{Complaints: []Complaint{}}
}

// Append adds a complaint with the next sequential id and returns it.
func (l *Log) Append(userID int64, userName, code, text string, at time.Time) Complaint {
	c := Complaint{
		ID:       l.nextID(),
		UserID:   userID,
		UserName: userName,
		Code:     code,
		Text:     text,
		SentAt:   at,
	}
	l.Complaints = append(l.Complaints, c)
	return c
}

func (l *Log) nextID() int {
	max := 0
	for _, c := range l.Complaints {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

// Find returns the complaint with the given id.
func (l *Log) Find(id int) (Complaint, bool) {
	for _, c := range l.Complaints {
		if c.ID == id {
			return c, true
		}
	}
	return Complaint{}, false
}

// Len returns the number of complaints.
func (l *Log) Len() int {
	return len(l.Complaints)
}
