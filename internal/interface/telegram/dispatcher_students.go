package telegram

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/campus-hub/campus-content-bot/internal/domain/enrollment"
	"github.com/campus-hub/campus-content-bot/internal/domain/identity"
	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/external/telegram"
	"github.com/campus-hub/campus-content-bot/internal/interface/telegram/session"
	"github.com/campus-hub/campus-content-bot/pkg/logger"
	"github.com/campus-hub/campus-content-bot/pkg/timeutil"
)

// handleStudents routes the student roster workflows: add, edit, delete
// and suspension. Grants are re-checked at every state step so a revoked
// admin is cut off mid-workflow.
func (d *Dispatcher) handleStudents(ctx context.Context, s *session.Session, chatID int64, text string) bool {
	userID := s.UserID

	switch text {
	case btnAddStudent:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentAddDelete) {
			s.EnterMenu(session.MenuAddStudentCode)
			d.replyKB(ctx, chatID, "🔢 أدخل كود الطالب:", navKeyboard())
		}
		return true
	case btnDeleteStudent:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentAddDelete) {
			s.EnterMenu(session.MenuDeleteStudentMethod)
			d.replyKB(ctx, chatID, "اختر طريقة حذف الطالب:", listKeyboard([]string{btnSelectByCode, btnSelectFromList}))
		}
		return true
	case btnEditStudent:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentEdit) {
			s.EnterMenu(session.MenuEditStudentMethod)
			d.replyKB(ctx, chatID, "اختر طريقة تعديل الطالب:", listKeyboard([]string{btnSelectByCode, btnSelectFromList}))
		}
		return true
	case btnSuspendStudent:
		if d.requireCap(ctx, chatID, userID, identity.CapSuspend) {
			s.EnterMenu(session.MenuSuspendMethod)
			d.replyKB(ctx, chatID, "اختر طريقة اختيار الطالب:", listKeyboard([]string{btnSelectByCode, btnSelectFromList}))
		}
		return true
	}

	switch s.Menu {
	case session.MenuAddStudentCode:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentAddDelete) {
			d.captureNewStudentCode(ctx, s, chatID, text)
		}
		return true
	case session.MenuAddStudentName:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentAddDelete) {
			d.addStudent(ctx, s, chatID, text)
		}
		return true

	case session.MenuDeleteStudentMethod:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentAddDelete) {
			d.pickStudentMethod(ctx, s, chatID, text, session.MenuDeleteStudentCode, session.MenuDeleteStudentList, "🔢 أدخل كود الطالب المراد حذفه:")
		}
		return true
	case session.MenuDeleteStudentCode:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentAddDelete) {
			if rec, ok := d.lookupStudentByCode(ctx, chatID, text); ok {
				d.confirmStudentDelete(ctx, s, chatID, rec)
			}
		}
		return true
	case session.MenuDeleteStudentList:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentAddDelete) {
			if d.pageStudents(ctx, s, chatID, text) {
				return true
			}
			if rec, ok := d.lookupStudentByLabel(ctx, chatID, text); ok {
				d.confirmStudentDelete(ctx, s, chatID, rec)
			}
		}
		return true
	case session.MenuDeleteStudentConfirm:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentAddDelete) {
			d.deleteStudent(ctx, s, chatID, text)
		}
		return true

	case session.MenuEditStudentMethod:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentEdit) {
			d.pickStudentMethod(ctx, s, chatID, text, session.MenuEditStudentCode, session.MenuEditStudentList, "🔢 أدخل كود الطالب المراد تعديله:")
		}
		return true
	case session.MenuEditStudentCode:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentEdit) {
			if rec, ok := d.lookupStudentByCode(ctx, chatID, text); ok {
				d.chooseEditField(ctx, s, chatID, rec)
			}
		}
		return true
	case session.MenuEditStudentList:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentEdit) {
			if d.pageStudents(ctx, s, chatID, text) {
				return true
			}
			if rec, ok := d.lookupStudentByLabel(ctx, chatID, text); ok {
				d.chooseEditField(ctx, s, chatID, rec)
			}
		}
		return true
	case session.MenuEditStudentField:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentEdit) {
			switch text {
			case btnEditName:
				s.EnterMenu(session.MenuEditStudentNewName)
				d.replyKB(ctx, chatID, "📝 أدخل الاسم الجديد:", navKeyboard())
			case btnEditCode:
				s.EnterMenu(session.MenuEditStudentNewCode)
				d.replyKB(ctx, chatID, "🔢 أدخل الكود الجديد:", navKeyboard())
			default:
				d.reply(ctx, chatID, "اختر ما تريد تعديله من الأزرار.")
			}
		}
		return true
	case session.MenuEditStudentNewName:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentEdit) {
			d.renameStudent(ctx, s, chatID, text)
		}
		return true
	case session.MenuEditStudentNewCode:
		if d.requireCap(ctx, chatID, userID, identity.CapStudentEdit) {
			d.recodeStudent(ctx, s, chatID, text)
		}
		return true

	case session.MenuSuspendMethod:
		if d.requireCap(ctx, chatID, userID, identity.CapSuspend) {
			d.pickStudentMethod(ctx, s, chatID, text, session.MenuSuspendCode, session.MenuSuspendList, "🔢 أدخل كود الطالب:")
		}
		return true
	case session.MenuSuspendCode:
		if d.requireCap(ctx, chatID, userID, identity.CapSuspend) {
			if rec, ok := d.lookupStudentByCode(ctx, chatID, text); ok {
				d.startSuspension(ctx, s, chatID, rec)
			}
		}
		return true
	case session.MenuSuspendList:
		if d.requireCap(ctx, chatID, userID, identity.CapSuspend) {
			if d.pageStudents(ctx, s, chatID, text) {
				return true
			}
			if rec, ok := d.lookupStudentByLabel(ctx, chatID, text); ok {
				d.startSuspension(ctx, s, chatID, rec)
			}
		}
		return true
	case session.MenuSuspendReason:
		if d.requireCap(ctx, chatID, userID, identity.CapSuspend) {
			d.suspendStudent(ctx, s, chatID, text)
		}
		return true
	case session.MenuUnsuspendConfirm:
		if d.requireCap(ctx, chatID, userID, identity.CapSuspend) {
			if text == btnUnsuspend {
				d.unsuspendStudent(ctx, s, chatID)
			}
		}
		return true
	}
	return false
}

// pickStudentMethod branches a workflow between enter-a-code and
// pick-from-list selection.
func (d *Dispatcher) pickStudentMethod(ctx context.Context, s *session.Session, chatID int64, text string, codeMenu, listMenu session.Menu, codePrompt string) {
	switch text {
	case btnSelectByCode:
		s.EnterMenu(codeMenu)
		d.replyKB(ctx, chatID, codePrompt, navKeyboard())
	case btnSelectFromList:
		d.showStudentsList(ctx, s, chatID, listMenu, 0)
	default:
		d.reply(ctx, chatID, "اختر إحدى الطريقتين من الأزرار.")
	}
}

// pageStudents handles prev/next taps on a student list screen.
func (d *Dispatcher) pageStudents(ctx context.Context, s *session.Session, chatID int64, text string) bool {
	page := s.GetInt(session.KeyStudentsPage, 0)
	switch text {
	case btnNext:
		d.showStudentsList(ctx, s, chatID, s.Menu, page+1)
		return true
	case btnPrev:
		if page > 0 {
			page--
		}
		d.showStudentsList(ctx, s, chatID, s.Menu, page)
		return true
	}
	return false
}

func (d *Dispatcher) lookupStudentByCode(ctx context.Context, chatID int64, raw string) (enrollment.Record, bool) {
	code := enrollment.NormalizeCode(raw)
	dir, err := d.stores.Enrollment.Load()
	if err != nil {
		d.fail(ctx, chatID, "students", err)
		return enrollment.Record{}, false
	}
	rec, err := dir.Find(code)
	if err != nil {
		d.reply(ctx, chatID, "❌ الكود غير موجود.")
		return enrollment.Record{}, false
	}
	return rec, true
}

// lookupStudentByLabel resolves a tapped list row back to its record via
// the trailing code digits.
func (d *Dispatcher) lookupStudentByLabel(ctx context.Context, chatID int64, label string) (enrollment.Record, bool) {
	code := parseTrailingDigits(label)
	if code == "" {
		d.reply(ctx, chatID, "❌ لم يتم العثور على الطالب.")
		return enrollment.Record{}, false
	}
	dir, err := d.stores.Enrollment.Load()
	if err != nil {
		d.fail(ctx, chatID, "students", err)
		return enrollment.Record{}, false
	}
	rec, err := dir.Find(code)
	if err != nil {
		d.reply(ctx, chatID, "❌ لم يتم العثور على الطالب.")
		return enrollment.Record{}, false
	}
	return rec, true
}

// parseTrailingDigits extracts the digit run at the end of a list row
// label, which is where student rows carry the code.
func parseTrailingDigits(label string) string {
	label = strings.TrimSpace(label)
	end := len(label)
	start := end
	for start > 0 && label[start-1] >= '0' && label[start-1] <= '9' {
		start--
	}
	return label[start:end]
}

// ── Add ─────────────────────────────────────────────────────────────────

func (d *Dispatcher) captureNewStudentCode(ctx context.Context, s *session.Session, chatID int64, raw string) {
	code := enrollment.NormalizeCode(raw)
	if code == "" {
		d.reply(ctx, chatID, "❌ أدخل كود رقمي صالح.")
		return
	}
	dir, err := d.stores.Enrollment.Load()
	if err != nil {
		d.fail(ctx, chatID, "students", err)
		return
	}
	if dir.Has(code) {
		d.reply(ctx, chatID, "❌ هذا الكود موجود بالفعل.")
		return
	}
	s.Set(keyNewStudentCode, code)
	s.EnterMenu(session.MenuAddStudentName)
	d.replyKB(ctx, chatID, "📝 أدخل اسم الطالب:", navKeyboard())
}

func (d *Dispatcher) addStudent(ctx context.Context, s *session.Session, chatID int64, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		d.reply(ctx, chatID, "❌ أدخل اسم صالح.")
		return
	}
	code := s.Get(keyNewStudentCode)
	if code == "" {
		d.reply(ctx, chatID, "❌ حدث خطأ. أعد المحاولة.")
		d.showAdminPanel(ctx, s, chatID)
		return
	}
	err := d.stores.Enrollment.Update(ctx, func(dir *enrollment.Directory) error {
		return dir.Add(code, name)
	})
	switch {
	case shared.IsAlreadyExists(err):
		d.reply(ctx, chatID, "❌ هذا الكود موجود بالفعل.")
	case err != nil:
		d.fail(ctx, chatID, "add student", err)
		return
	default:
		d.log.Info("student added", logger.Code(code), logger.UserID(s.UserID))
		d.reply(ctx, chatID, fmt.Sprintf("✅ تم إضافة الطالب: %s (كود: %s)", name, code))
	}
	s.Delete(keyNewStudentCode)
	d.showAdminPanel(ctx, s, chatID)
}

// ── Delete ──────────────────────────────────────────────────────────────

func (d *Dispatcher) confirmStudentDelete(ctx context.Context, s *session.Session, chatID int64, rec enrollment.Record) {
	s.Set(session.KeyStudentCode, rec.Code)
	s.EnterMenu(session.MenuDeleteStudentConfirm)
	d.replyKB(ctx, chatID, fmt.Sprintf("⚠️ حذف الطالب '%s' (كود: %s). تأكيد؟", rec.Name, rec.Code), confirmDeleteKeyboard())
}

func (d *Dispatcher) deleteStudent(ctx context.Context, s *session.Session, chatID int64, text string) {
	switch text {
	case btnConfirmDel:
		code := s.Get(session.KeyStudentCode)
		err := d.stores.Enrollment.Update(ctx, func(dir *enrollment.Directory) error {
			return dir.Delete(code)
		})
		if err != nil && !shared.IsNotFound(err) {
			d.fail(ctx, chatID, "delete student", err)
			return
		}
		d.log.Info("student deleted", logger.Code(code), logger.UserID(s.UserID))
		d.reply(ctx, chatID, "✅ تم حذف الطالب.")
		d.showAdminPanel(ctx, s, chatID)
	case btnCancelAction:
		d.showAdminPanel(ctx, s, chatID)
	}
}

// ── Edit ────────────────────────────────────────────────────────────────

func (d *Dispatcher) chooseEditField(ctx context.Context, s *session.Session, chatID int64, rec enrollment.Record) {
	s.Set(session.KeyStudentCode, rec.Code)
	s.EnterMenu(session.MenuEditStudentField)
	title := fmt.Sprintf("👤 %s (كود: %s)\nاختر ما تريد تعديله:", rec.Name, rec.Code)
	d.replyKB(ctx, chatID, title, listKeyboard([]string{btnEditName, btnEditCode}))
}

func (d *Dispatcher) renameStudent(ctx context.Context, s *session.Session, chatID int64, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		d.reply(ctx, chatID, "❌ اسم غير صالح.")
		return
	}
	code := s.Get(session.KeyStudentCode)
	err := d.stores.Enrollment.Update(ctx, func(dir *enrollment.Directory) error {
		return dir.Rename(code, name)
	})
	switch {
	case shared.IsNotFound(err):
		d.reply(ctx, chatID, "❌ لم يتم العثور على الطالب.")
		return
	case err != nil:
		d.fail(ctx, chatID, "rename student", err)
		return
	}
	d.reply(ctx, chatID, "✅ تم تحديث الاسم.")
	d.showAdminPanel(ctx, s, chatID)
}

func (d *Dispatcher) recodeStudent(ctx context.Context, s *session.Session, chatID int64, raw string) {
	newCode := enrollment.NormalizeCode(raw)
	if newCode == "" {
		d.reply(ctx, chatID, "❌ كود غير صالح.")
		return
	}
	oldCode := s.Get(session.KeyStudentCode)
	err := d.stores.Enrollment.Update(ctx, func(dir *enrollment.Directory) error {
		return dir.Recode(oldCode, newCode)
	})
	switch {
	case shared.IsAlreadyExists(err):
		d.reply(ctx, chatID, "❌ الكود الجديد مستخدم بالفعل.")
		return
	case shared.IsNotFound(err):
		d.reply(ctx, chatID, "❌ لم يتم العثور على الطالب.")
		return
	case shared.IsValidation(err):
		d.reply(ctx, chatID, "❌ كود غير صالح.")
		return
	case err != nil:
		d.fail(ctx, chatID, "recode student", err)
		return
	}
	d.log.Info("student recoded", logger.Code(newCode), logger.UserID(s.UserID))
	d.reply(ctx, chatID, fmt.Sprintf("✅ تم تحديث الكود من %s إلى %s.", oldCode, newCode))
	d.showAdminPanel(ctx, s, chatID)
}

// ── Suspension ──────────────────────────────────────────────────────────

// startSuspension branches on the student's current state: a suspended
// account offers a lift, an active one asks for a reason.
func (d *Dispatcher) startSuspension(ctx context.Context, s *session.Session, chatID int64, rec enrollment.Record) {
	set, err := d.stores.Suspensions.Load()
	if err != nil {
		d.fail(ctx, chatID, "suspend", err)
		return
	}
	s.Set(session.KeyStudentCode, rec.Code)
	if susp, ok := set.Get(rec.Code); ok {
		reason := susp.Reason
		if reason == "" {
			reason = "بدون سبب مذكور"
		}
		s.EnterMenu(session.MenuUnsuspendConfirm)
		msg := "الحساب موقوف حالياً.\nالسبب: " + reason + "\nهل تريد إلغاء الإيقاف؟"
		d.replyKB(ctx, chatID, msg, listKeyboard([]string{btnUnsuspend}))
		return
	}
	s.EnterMenu(session.MenuSuspendReason)
	d.replyKB(ctx, chatID, "✍️ أدخل سبب الإيقاف المؤقت:", navKeyboard())
}

func (d *Dispatcher) suspendStudent(ctx context.Context, s *session.Session, chatID int64, reason string) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		d.reply(ctx, chatID, "❌ يرجى كتابة سبب.")
		return
	}
	code := s.Get(session.KeyStudentCode)
	err := d.stores.Suspensions.Update(ctx, func(set enrollment.SuspensionSet) error {
		set.Suspend(code, reason, s.UserID, timeutil.Now())
		return nil
	})
	if err != nil {
		d.fail(ctx, chatID, "suspend", err)
		return
	}
	d.log.Info("student suspended", logger.Code(code), logger.UserID(s.UserID))
	d.reply(ctx, chatID, "✅ تم إيقاف الحساب مؤقتًا.")
	d.showAdminPanel(ctx, s, chatID)
}

func (d *Dispatcher) unsuspendStudent(ctx context.Context, s *session.Session, chatID int64) {
	code := s.Get(session.KeyStudentCode)
	err := d.stores.Suspensions.Update(ctx, func(set enrollment.SuspensionSet) error {
		set.Lift(code)
		return nil
	})
	if err != nil {
		d.fail(ctx, chatID, "unsuspend", err)
		return
	}
	d.log.Info("suspension lifted", logger.Code(code), logger.UserID(s.UserID))
	d.reply(ctx, chatID, "✅ تم إلغاء الإيقاف.")
	d.showAdminPanel(ctx, s, chatID)
}

// ── Bulk import ─────────────────────────────────────────────────────────

// handleImport runs the CSV roster import workflow. The uploaded file is
// fetched from Telegram, parsed and three-way merged into the directory.
func (d *Dispatcher) handleImport(ctx context.Context, s *session.Session, msg *telegram.Message, text string) bool {
	chatID := msg.Chat.ID

	if text == btnImportCodes {
		if d.requireCap(ctx, chatID, s.UserID, identity.CapStudentAddDelete) {
			s.EnterMenu(session.MenuImportWaitFile)
			d.replyKB(ctx, chatID, "📥 ارفع ملف CSV بصيغة: code,name", navKeyboard())
		}
		return true
	}
	if s.Menu != session.MenuImportWaitFile {
		return false
	}
	if !d.requireCap(ctx, chatID, s.UserID, identity.CapStudentAddDelete) {
		return true
	}

	if msg.Document == nil {
		d.reply(ctx, chatID, "📄 أرسل ملف CSV الآن أو ارجع للخلف.")
		return true
	}
	if !strings.EqualFold(filepath.Ext(msg.Document.FileName), ".csv") {
		d.reply(ctx, chatID, "❌ يرجى رفع ملف CSV صحيح.")
		return true
	}

	file, err := d.api.GetFile(ctx, msg.Document.FileID)
	if err != nil {
		d.fail(ctx, chatID, "import", err)
		return true
	}
	data, err := d.api.DownloadFile(ctx, file.FilePath)
	if err != nil {
		d.fail(ctx, chatID, "import", err)
		return true
	}

	res, err := d.importer.Run(ctx, data)
	switch {
	case shared.IsValidation(err):
		d.reply(ctx, chatID, "❌ ملف CSV غير صالح.")
		return true
	case err != nil:
		d.fail(ctx, chatID, "import", err)
		return true
	}

	d.log.Info("roster imported",
		logger.UserID(s.UserID),
		logger.Int("added", res.Added),
		logger.Int("updated", res.Updated),
		logger.Int("skipped", res.Skipped),
	)
	d.reply(ctx, chatID, fmt.Sprintf("✅ تم الاستيراد:\n- مضاف: %d\n- مُحدّث: %d\n- متخطى: %d", res.Added, res.Updated, res.Skipped))
	d.showAdminPanel(ctx, s, chatID)
	return true
}
