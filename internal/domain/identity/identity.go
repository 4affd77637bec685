// Package identity models Telegram identities, the admin set and the
// capability vocabulary that scopes the admin console.
package identity

import (
	"strconv"
	"strings"
)

// Identity is what we know about a Telegram account that has touched the
// bot: upserted from every inbound event plus the last code it logged in
// with.
type Identity struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	LastCode string `json:"last_code,omitempty"`
}

// Capability names one admin permission. The set is closed; unknown names
// are ignored when loaded from disk.
type Capability string

const (
	CapContent          Capability = "content"
	CapStudentAddDelete Capability = "student_add_delete"
	CapStudentEdit      Capability = "student_edit"
	CapSuspend          Capability = "suspend"
	CapComplaints       Capability = "complaints"
	CapStats            Capability = "stats"
	CapBroadcast        Capability = "broadcast"
)

// AllCapabilities lists every capability in display order.
var AllCapabilities = []Capability{
	CapContent,
	CapStudentAddDelete,
	CapStudentEdit,
	CapSuspend,
	CapComplaints,
	CapStats,
	CapBroadcast,
}

// capabilityLabels are the console button labels, keyed by capability.
var capabilityLabels = map[Capability]string{
	CapContent:          "1- اضافة محاضرات",
	CapStudentAddDelete: "2- اضافة طالب وحذفه",
	CapStudentEdit:      "3- تعديل بيانات الطالب",
	CapSuspend:          "4- ايقاف او الغاء الحسابات",
	CapComplaints:       "5- عرض المقترحات والشكاوي",
	CapStats:            "6- احصائيات البوت",
	CapBroadcast:        "7- بث اشعار",
}

// Label returns the display label for a capability.
func (c Capability) Label() string {
	if l, ok := capabilityLabels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether the capability belongs to the closed set.
func (c Capability) Valid() bool {
	_, ok := capabilityLabels[c]
	return ok
}

// CapabilitySet is the grants held by one admin.
type CapabilitySet map[Capability]bool

// NewCapabilitySet builds a set from the given capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	s := CapabilitySet{}
	for _, c := range caps {
		s[c] = true
	}
	return s
}

// FullCapabilitySet grants everything. The owner holds it implicitly.
func FullCapabilitySet() CapabilitySet {
	return NewCapabilitySet(AllCapabilities...)
}

// Has reports whether the capability is granted.
func (s CapabilitySet) Has(c Capability) bool {
	return s != nil && s[c]
}

// Toggle flips a grant and returns the new state.
func (s CapabilitySet) Toggle(c Capability) bool {
	s[c] = !s[c]
	return s[c]
}

// List returns the granted capabilities in display order.
func (s CapabilitySet) List() []Capability {
	var out []Capability
	for _, c := range AllCapabilities {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// DisplayLabel renders the admin row shown in console listings:
// "ID:<id> | name (@user) | كود: <code>".
func DisplayLabel(id Identity) string {
	var b strings.Builder
	b.WriteString("ID:")
	b.WriteString(strconv.FormatInt(id.ID, 10))
	b.WriteString(" | ")
	if id.Name != "" {
		b.WriteString(id.Name)
	} else {
		b.WriteString("-")
	}
	if id.Username != "" {
		b.WriteString(" (@")
		b.WriteString(id.Username)
		b.WriteString(")")
	} else {
		b.WriteString(" (-)")
	}
	if id.LastCode != "" {
		b.WriteString(" | كود: ")
		b.WriteString(id.LastCode)
	}
	return b.String()
}
