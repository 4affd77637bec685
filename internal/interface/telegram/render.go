package telegram

import (
	"context"
	"fmt"
	"sort"

	"github.com/campus-hub/campus-content-bot/internal/domain/identity"
	"github.com/campus-hub/campus-content-bot/internal/interface/telegram/session"
)

// renderMenu re-renders the session's current screen. It carries "back"
// navigation: after a stack pop the restored menu is drawn again from
// live data. Screens whose prerequisite context is gone degrade to the
// nearest ancestor instead of erroring.
func (d *Dispatcher) renderMenu(ctx context.Context, s *session.Session, chatID int64) {
	switch s.Menu {
	case session.MenuMyData:
		d.showMyData(ctx, s, chatID)
	case session.MenuViewSubjects:
		d.showSubjects(ctx, s, chatID)
	case session.MenuViewLectures:
		if subject := s.Get(session.KeySubject); subject != "" {
			d.showLectures(ctx, s, chatID, subject)
		} else {
			d.showSubjects(ctx, s, chatID)
		}
	case session.MenuViewFiles:
		if s.Get(session.KeySubject) != "" && s.Get(session.KeyLecture) != "" {
			d.showFiles(ctx, s, chatID)
		} else {
			d.showSubjects(ctx, s, chatID)
		}
	case session.MenuAdminPanel:
		d.showAdminPanel(ctx, s, chatID)
	case session.MenuComplaintsList:
		d.showComplaints(ctx, s, chatID, s.GetInt(session.KeyComplaintsPage, 0))
	case session.MenuDeleteStudentList, session.MenuEditStudentList, session.MenuSuspendList:
		d.showStudentsList(ctx, s, chatID, s.Menu, s.GetInt(session.KeyStudentsPage, 0))
	case session.MenuManageAdmins:
		d.showManageAdmins(ctx, s, chatID)
	case session.MenuListAdmins, session.MenuEditAdminPermsSelect, session.MenuDeleteAdminSelect:
		d.showAdminsList(ctx, s, chatID, s.Menu, s.GetInt(session.KeyAdminsPage, 0))
	case session.MenuEditAdminPerms:
		d.showEditAdminPerms(ctx, s, chatID)
	default:
		d.showMainMenu(ctx, s, chatID)
	}
}

// breadcrumbs renders the browsing path shown above catalog screens.
func breadcrumbs(s *session.Session) string {
	path := "📂 المحاضرات"
	if subject := s.Get(session.KeySubject); subject != "" {
		path += " > 🧬 " + subject
		if lecture := s.Get(session.KeyLecture); lecture != "" {
			path += " > 🧾 " + lecture
		}
	}
	return path
}

// showMainMenu lands on the main menu and drops all navigation state.
func (d *Dispatcher) showMainMenu(ctx context.Context, s *session.Session, chatID int64) {
	s.Reset()
	d.replyKB(ctx, chatID, "اختر من القائمة:", mainMenuKeyboard(d.stores.Admins.IsAdmin(s.UserID)))
}

func (d *Dispatcher) showMyData(ctx context.Context, s *session.Session, chatID int64) {
	s.EnterMenu(session.MenuMyData)
	name := s.StudentName
	if name == "" {
		name = "غير معروف"
	}
	d.replyKB(ctx, chatID, "👤 بياناتي:", myDataKeyboard(name))
}

// ── Catalog browsing ────────────────────────────────────────────────────

func (d *Dispatcher) showSubjects(ctx context.Context, s *session.Session, chatID int64) {
	cat, err := d.stores.Catalog.Load()
	if err != nil {
		d.fail(ctx, chatID, "browse", err)
		return
	}
	subjects := cat.SubjectNames()
	if len(subjects) == 0 {
		d.reply(ctx, chatID, "❌ لا توجد محاضرات حالياً.")
		return
	}
	s.Delete(session.KeySubject)
	s.Delete(session.KeyLecture)
	s.EnterMenu(session.MenuViewSubjects)
	d.replyKB(ctx, chatID, breadcrumbs(s)+"\nاختر المادة:", listKeyboard(subjects))
}

func (d *Dispatcher) showLectures(ctx context.Context, s *session.Session, chatID int64, subject string) {
	cat, err := d.stores.Catalog.Load()
	if err != nil {
		d.fail(ctx, chatID, "browse", err)
		return
	}
	lectures, err := cat.LectureNames(subject)
	if err != nil {
		d.reply(ctx, chatID, "❌ هذه المادة غير موجودة!")
		return
	}
	if len(lectures) == 0 {
		d.reply(ctx, chatID, "❌ لا توجد محاضرات في هذه المادة.")
		return
	}
	s.Set(session.KeySubject, subject)
	s.Delete(session.KeyLecture)
	s.EnterMenu(session.MenuViewLectures)
	d.replyKB(ctx, chatID, breadcrumbs(s)+"\nاختر المحاضرة في مادة "+subject+":", listKeyboard(lectures))
}

func (d *Dispatcher) showFiles(ctx context.Context, s *session.Session, chatID int64) {
	subject := s.Get(session.KeySubject)
	lecture := s.Get(session.KeyLecture)

	cat, err := d.stores.Catalog.Load()
	if err != nil {
		d.fail(ctx, chatID, "browse", err)
		return
	}
	files, err := cat.FileNames(subject, lecture)
	if err != nil {
		s.Delete(session.KeyLecture)
		d.reply(ctx, chatID, "❌ هذه المحاضرة غير موجودة!")
		return
	}
	if len(files) == 0 {
		s.Delete(session.KeyLecture)
		d.reply(ctx, chatID, "❌ لا توجد ملفات في هذه المحاضرة.")
		return
	}
	s.EnterMenu(session.MenuViewFiles)
	d.replyKB(ctx, chatID, breadcrumbs(s)+"\nاختر الملف الذي تريد تحميله في "+lecture+":", listKeyboard(files))
}

// ── Admin screens ───────────────────────────────────────────────────────

func (d *Dispatcher) showAdminPanel(ctx context.Context, s *session.Session, chatID int64) {
	s.EnterMenu(session.MenuAdminPanel)
	kb := adminPanelKeyboard(d.stores.Admins.IsOwner(s.UserID), func(c identity.Capability) bool {
		return d.stores.Admins.HasCapability(s.UserID, c)
	})
	d.replyKB(ctx, chatID, "🛠️ خصائص الأدمن:", kb)
}

func (d *Dispatcher) showComplaints(ctx context.Context, s *session.Session, chatID int64, page int) {
	log, err := d.stores.Complaints.Load()
	if err != nil {
		d.fail(ctx, chatID, "complaints", err)
		return
	}
	total := log.Len()
	if total == 0 {
		d.reply(ctx, chatID, "لا توجد شكاوى/مقترحات حتى الآن.")
		return
	}

	// Newest first.
	sorted := make([]int, 0, total)
	for _, c := range log.Complaints {
		sorted = append(sorted, c.ID)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	labels := make([]string, 0, total)
	for _, id := range sorted {
		labels = append(labels, fmt.Sprintf("شكوى/اقتراح #%d", id))
	}

	s.EnterMenu(session.MenuComplaintsList)
	s.SetInt(session.KeyComplaintsPage, page)
	title := fmt.Sprintf("📬 الشكاوى/المقترحات (الصفحة %d من %d):", page+1, pageCount(total))
	d.replyKB(ctx, chatID, title, pagedKeyboard(pageSlice(labels, page), page, total))
}

func (d *Dispatcher) showManageAdmins(ctx context.Context, s *session.Session, chatID int64) {
	s.EnterMenu(session.MenuManageAdmins)
	d.replyKB(ctx, chatID, "👑 إدارة الأدمنز:", manageAdminsKeyboard())
}

// showAdminsList renders the admin roster. The target menu decides what
// tapping a row means: view only, edit grants, or delete.
func (d *Dispatcher) showAdminsList(ctx context.Context, s *session.Session, chatID int64, menu session.Menu, page int) {
	ids := d.stores.Admins.List()
	total := len(ids)
	if total == 0 {
		d.reply(ctx, chatID, "لا يوجد أدمنز حالياً.")
		return
	}

	labels := make([]string, 0, total)
	for _, id := range ids {
		labels = append(labels, d.adminLabel(id))
	}

	s.EnterMenu(menu)
	s.SetInt(session.KeyAdminsPage, page)

	var title string
	switch menu {
	case session.MenuEditAdminPermsSelect:
		title = "✏️ اختر الأدمن لتعديل صلاحياته"
	case session.MenuDeleteAdminSelect:
		title = "🗑️ اختر الأدمن لحذفه"
	default:
		title = "📋 قائمة الأدمنز"
	}
	title = fmt.Sprintf("%s (صفحة %d/%d):", title, page+1, pageCount(total))
	d.replyKB(ctx, chatID, title, pagedKeyboard(pageSlice(labels, page), page, total))
}

func (d *Dispatcher) showEditAdminPerms(ctx context.Context, s *session.Session, chatID int64) {
	adminID := s.GetInt64(session.KeyAdminID, 0)
	if adminID == 0 {
		d.reply(ctx, chatID, "❌ لم يتم تحديد الأدمن.")
		return
	}
	caps := d.stores.Admins.Capabilities(adminID)
	s.EnterMenu(session.MenuEditAdminPerms)
	d.replyKB(ctx, chatID, "✏️ تعديل صلاحيات الأدمن:\n"+d.adminLabel(adminID), permToggleKeyboard(caps))
}

// adminLabel renders the roster row for an admin from whatever identity
// data the bot has seen.
func (d *Dispatcher) adminLabel(id int64) string {
	ident, found, err := d.stores.Identities.Get(id)
	if err != nil || !found {
		ident = identity.Identity{ID: id}
	}
	return identity.DisplayLabel(ident)
}

// ── Student lists ───────────────────────────────────────────────────────

// studentLabels renders the pick-a-student rows sorted by name then code.
func (d *Dispatcher) studentLabels() ([]string, error) {
	dir, err := d.stores.Enrollment.Load()
	if err != nil {
		return nil, err
	}
	records := make([]struct{ name, code string }, 0, dir.Len())
	for _, r := range dir.Records {
		records = append(records, struct{ name, code string }{r.Name, r.Code})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].name != records[j].name {
			return records[i].name < records[j].name
		}
		return records[i].code < records[j].code
	})

	labels := make([]string, 0, len(records))
	for _, r := range records {
		labels = append(labels, "👤 "+r.name+" | "+r.code)
	}
	return labels, nil
}

func (d *Dispatcher) showStudentsList(ctx context.Context, s *session.Session, chatID int64, menu session.Menu, page int) {
	labels, err := d.studentLabels()
	if err != nil {
		d.fail(ctx, chatID, "students", err)
		return
	}
	total := len(labels)
	if total == 0 {
		d.reply(ctx, chatID, "لا يوجد طلاب.")
		return
	}

	s.EnterMenu(menu)
	s.SetInt(session.KeyStudentsPage, page)

	var title string
	switch menu {
	case session.MenuDeleteStudentList:
		title = "🗑️ اختر الطالب للحذف"
	case session.MenuEditStudentList:
		title = "✏️ اختر الطالب للتعديل"
	default:
		title = "⏸️ اختر الطالب لإدارة الإيقاف"
	}
	title = fmt.Sprintf("%s (صفحة %d/%d):", title, page+1, pageCount(total))
	d.replyKB(ctx, chatID, title, pagedKeyboard(pageSlice(labels, page), page, total))
}
