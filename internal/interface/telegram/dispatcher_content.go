package telegram

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/campus-hub/campus-content-bot/internal/domain/catalog"
	"github.com/campus-hub/campus-content-bot/internal/domain/identity"
	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/external/telegram"
	"github.com/campus-hub/campus-content-bot/internal/interface/telegram/session"
	"github.com/campus-hub/campus-content-bot/pkg/logger"
)

// allowedUploadExts are the catalog attachment types accepted from
// admins: documents, slides, audio and video.
var allowedUploadExts = map[string]bool{
	".pdf": true, ".ppt": true, ".pptx": true,
	".mp3": true, ".wav": true, ".ogg": true, ".m4a": true,
	".mp4": true, ".avi": true, ".mkv": true, ".mov": true,
}

// allowedUpload checks an attachment's extension and size. Nameless
// attachments pass the extension check; Telegram strips names from some
// forwarded media.
func (d *Dispatcher) allowedUpload(name string, size int64) bool {
	if name != "" && !allowedUploadExts[strings.ToLower(filepath.Ext(name))] {
		return false
	}
	if size > 0 && size > d.maxUpload {
		return false
	}
	return true
}

// handleContent routes the content management workflows: add, rename and
// delete for subjects, lectures and files. Every step re-checks the
// content grant.
func (d *Dispatcher) handleContent(ctx context.Context, s *session.Session, msg *telegram.Message, text string) bool {
	chatID := msg.Chat.ID

	gate := func() bool { return d.requireCap(ctx, chatID, s.UserID, identity.CapContent) }

	switch text {
	case btnAddSubject:
		if gate() {
			s.EnterMenu(session.MenuAddSubject)
			d.replyKB(ctx, chatID, "✏️ أدخل اسم المادة الجديدة:", navKeyboard())
		}
		return true
	case btnAddLecture:
		if gate() {
			d.showSubjectSelect(ctx, s, chatID, session.MenuAddLectureSubject, "📌 اختر المادة لإضافة المحاضرة إليها:")
		}
		return true
	case btnAddFile:
		if gate() {
			d.showSubjectSelect(ctx, s, chatID, session.MenuAddFileSubject, "📌 اختر المادة:")
		}
		return true
	case btnRenameMenu:
		if gate() {
			s.EnterMenu(session.MenuContentRename)
			d.replyKB(ctx, chatID, "اختر ما تريد إعادة تسميته:", listKeyboard([]string{btnRenameSubject, btnRenameLecture, btnRenameFile}))
		}
		return true
	case btnDeleteMenu:
		if gate() {
			s.EnterMenu(session.MenuContentDelete)
			d.replyKB(ctx, chatID, "اختر ما تريد حذفه:", listKeyboard([]string{btnDeleteSubject, btnDeleteLecture, btnDeleteFile}))
		}
		return true
	case btnRenameSubject:
		if gate() {
			d.showSubjectSelect(ctx, s, chatID, session.MenuRenameSubjectSelect, "✏️ اختر المادة التي تريد إعادة تسميتها:")
		}
		return true
	case btnRenameLecture:
		if gate() {
			d.showSubjectSelect(ctx, s, chatID, session.MenuRenameLectureSubject, "✏️ اختر المادة:")
		}
		return true
	case btnRenameFile:
		if gate() {
			d.showSubjectSelect(ctx, s, chatID, session.MenuRenameFileSubject, "✏️ اختر المادة:")
		}
		return true
	case btnDeleteSubject:
		if gate() {
			d.showSubjectSelect(ctx, s, chatID, session.MenuDeleteSubjectSelect, "🗑️ اختر المادة التي تريد حذفها:")
		}
		return true
	case btnDeleteLecture:
		if gate() {
			d.showSubjectSelect(ctx, s, chatID, session.MenuDeleteLectureSubject, "🗑️ اختر المادة:")
		}
		return true
	case btnDeleteFile:
		if gate() {
			d.showSubjectSelect(ctx, s, chatID, session.MenuDeleteFileSubject, "🗑️ اختر المادة:")
		}
		return true
	}

	switch s.Menu {
	case session.MenuAddSubject:
		if gate() {
			d.addSubject(ctx, s, chatID, text)
		}
		return true

	case session.MenuAddLectureSubject:
		if gate() {
			d.promptLectureName(ctx, s, chatID, text)
		}
		return true
	case session.MenuAddLectureName:
		if gate() {
			d.addLecture(ctx, s, chatID, text)
		}
		return true

	case session.MenuAddFileSubject:
		if gate() {
			d.selectLecture(ctx, s, chatID, text, session.MenuAddFileLecture, "📌 اختر المحاضرة:")
		}
		return true
	case session.MenuAddFileLecture:
		if gate() {
			if !d.lectureExists(ctx, chatID, s.Get(session.KeySubject), text) {
				return true
			}
			s.Set(session.KeyLecture, text)
			s.EnterMenu(session.MenuAddFileUpload)
			d.replyKB(ctx, chatID, "📎 أرسل الملف الذي تريد رفعه:", cancellableKeyboard(btnCancelUpload))
		}
		return true
	case session.MenuAddFileUpload:
		if gate() {
			d.uploadFile(ctx, s, msg)
		}
		return true

	case session.MenuRenameSubjectSelect:
		if gate() {
			s.Set(session.KeySubject, text)
			s.EnterMenu(session.MenuRenameSubjectNewName)
			d.replyKB(ctx, chatID, "✏️ أدخل الاسم الجديد للمادة '"+text+"':", navKeyboard())
		}
		return true
	case session.MenuRenameSubjectNewName:
		if gate() {
			d.renameSubject(ctx, s, chatID, text)
		}
		return true

	case session.MenuRenameLectureSubject:
		if gate() {
			d.selectLecture(ctx, s, chatID, text, session.MenuRenameLectureSelect, "✏️ اختر المحاضرة:")
		}
		return true
	case session.MenuRenameLectureSelect:
		if gate() {
			s.Set(session.KeyLecture, text)
			s.EnterMenu(session.MenuRenameLectureNewName)
			d.replyKB(ctx, chatID, "✏️ أدخل الاسم الجديد للمحاضرة '"+text+"':", navKeyboard())
		}
		return true
	case session.MenuRenameLectureNewName:
		if gate() {
			d.renameLecture(ctx, s, chatID, text)
		}
		return true

	case session.MenuRenameFileSubject:
		if gate() {
			d.selectLecture(ctx, s, chatID, text, session.MenuRenameFileLecture, "✏️ اختر المحاضرة:")
		}
		return true
	case session.MenuRenameFileLecture:
		if gate() {
			d.selectFile(ctx, s, chatID, text, session.MenuRenameFileSelect, "✏️ اختر الملف:")
		}
		return true
	case session.MenuRenameFileSelect:
		if gate() {
			s.Set(session.KeyFile, text)
			s.EnterMenu(session.MenuRenameFileNewName)
			d.replyKB(ctx, chatID, "✏️ أدخل الاسم الجديد للملف '"+text+"':", navKeyboard())
		}
		return true
	case session.MenuRenameFileNewName:
		if gate() {
			d.renameFile(ctx, s, chatID, text)
		}
		return true

	case session.MenuDeleteSubjectSelect:
		if gate() {
			s.Set(session.KeySubject, text)
			s.EnterMenu(session.MenuDeleteSubjectConfirm)
			d.replyKB(ctx, chatID, "⚠️ سيتم حذف المادة '"+text+"' بجميع محاضراتها وملفاتها. هل أنت متأكد؟", confirmDeleteKeyboard())
		}
		return true
	case session.MenuDeleteSubjectConfirm:
		if gate() {
			d.confirmDelete(ctx, s, chatID, text, func(c *catalog.Catalog) error {
				return c.DeleteSubject(s.Get(session.KeySubject))
			})
		}
		return true

	case session.MenuDeleteLectureSubject:
		if gate() {
			d.selectLecture(ctx, s, chatID, text, session.MenuDeleteLectureSelect, "🗑️ اختر المحاضرة:")
		}
		return true
	case session.MenuDeleteLectureSelect:
		if gate() {
			subject := s.Get(session.KeySubject)
			s.Set(session.KeyLecture, text)
			s.EnterMenu(session.MenuDeleteLectureConfirm)
			d.replyKB(ctx, chatID, "⚠️ سيتم حذف محاضرة '"+text+"' من مادة '"+subject+"'. تأكيد؟", confirmDeleteKeyboard())
		}
		return true
	case session.MenuDeleteLectureConfirm:
		if gate() {
			d.confirmDelete(ctx, s, chatID, text, func(c *catalog.Catalog) error {
				return c.DeleteLecture(s.Get(session.KeySubject), s.Get(session.KeyLecture))
			})
		}
		return true

	case session.MenuDeleteFileSubject:
		if gate() {
			d.selectLecture(ctx, s, chatID, text, session.MenuDeleteFileLecture, "🗑️ اختر المحاضرة:")
		}
		return true
	case session.MenuDeleteFileLecture:
		if gate() {
			d.selectFile(ctx, s, chatID, text, session.MenuDeleteFileSelect, "🗑️ اختر الملف:")
		}
		return true
	case session.MenuDeleteFileSelect:
		if gate() {
			subject := s.Get(session.KeySubject)
			lecture := s.Get(session.KeyLecture)
			s.Set(session.KeyFile, text)
			s.EnterMenu(session.MenuDeleteFileConfirm)
			d.replyKB(ctx, chatID, "⚠️ سيتم حذف الملف '"+text+"' من '"+subject+" > "+lecture+"'. تأكيد؟", confirmDeleteKeyboard())
		}
		return true
	case session.MenuDeleteFileConfirm:
		if gate() {
			d.confirmDelete(ctx, s, chatID, text, func(c *catalog.Catalog) error {
				return c.DeleteFile(s.Get(session.KeySubject), s.Get(session.KeyLecture), s.Get(session.KeyFile))
			})
		}
		return true
	}
	return false
}

// ── Selection screens ───────────────────────────────────────────────────

// showSubjectSelect renders the pick-a-subject list for a workflow.
func (d *Dispatcher) showSubjectSelect(ctx context.Context, s *session.Session, chatID int64, menu session.Menu, title string) {
	cat, err := d.stores.Catalog.Load()
	if err != nil {
		d.fail(ctx, chatID, "content", err)
		return
	}
	subjects := cat.SubjectNames()
	if len(subjects) == 0 {
		d.reply(ctx, chatID, "❌ لا توجد مواد حالياً. أضف مادة أولاً.")
		return
	}
	s.EnterMenu(menu)
	d.replyKB(ctx, chatID, title, listKeyboard(subjects))
}

// selectLecture validates the chosen subject and renders its lectures.
func (d *Dispatcher) selectLecture(ctx context.Context, s *session.Session, chatID int64, subject string, menu session.Menu, title string) {
	cat, err := d.stores.Catalog.Load()
	if err != nil {
		d.fail(ctx, chatID, "content", err)
		return
	}
	lectures, err := cat.LectureNames(subject)
	if err != nil || len(lectures) == 0 {
		d.reply(ctx, chatID, "❌ المادة غير موجودة أو لا تحتوي محاضرات.")
		return
	}
	s.Set(session.KeySubject, subject)
	s.EnterMenu(menu)
	d.replyKB(ctx, chatID, title, listKeyboard(lectures))
}

// selectFile validates the chosen lecture and renders its files.
func (d *Dispatcher) selectFile(ctx context.Context, s *session.Session, chatID int64, lecture string, menu session.Menu, title string) {
	cat, err := d.stores.Catalog.Load()
	if err != nil {
		d.fail(ctx, chatID, "content", err)
		return
	}
	files, err := cat.FileNames(s.Get(session.KeySubject), lecture)
	if err != nil {
		d.reply(ctx, chatID, "❌ المحاضرة غير موجودة.")
		return
	}
	if len(files) == 0 {
		d.reply(ctx, chatID, "❌ لا توجد ملفات في هذه المحاضرة.")
		return
	}
	s.Set(session.KeyLecture, lecture)
	s.EnterMenu(menu)
	d.replyKB(ctx, chatID, title, listKeyboard(files))
}

func (d *Dispatcher) lectureExists(ctx context.Context, chatID int64, subject, lecture string) bool {
	cat, err := d.stores.Catalog.Load()
	if err != nil {
		d.fail(ctx, chatID, "content", err)
		return false
	}
	if _, err := cat.Lecture(subject, lecture); err != nil {
		d.reply(ctx, chatID, "❌ المحاضرة غير موجودة!")
		return false
	}
	return true
}

// ── Mutations ───────────────────────────────────────────────────────────

func (d *Dispatcher) addSubject(ctx context.Context, s *session.Session, chatID int64, name string) {
	err := d.stores.Catalog.Update(ctx, func(c *catalog.Catalog) error {
		return c.AddSubject(name)
	})
	switch {
	case shared.IsAlreadyExists(err):
		d.reply(ctx, chatID, "❌ المادة موجودة بالفعل!")
	case shared.IsValidation(err):
		d.reply(ctx, chatID, "❌ أدخل اسم مادة صالح.")
		return
	case err != nil:
		d.fail(ctx, chatID, "add subject", err)
		return
	default:
		d.reply(ctx, chatID, "✅ تم إضافة المادة: "+strings.TrimSpace(name))
	}
	d.showAdminPanel(ctx, s, chatID)
}

func (d *Dispatcher) promptLectureName(ctx context.Context, s *session.Session, chatID int64, subject string) {
	cat, err := d.stores.Catalog.Load()
	if err != nil {
		d.fail(ctx, chatID, "content", err)
		return
	}
	existing, err := cat.LectureNames(subject)
	if err != nil {
		d.reply(ctx, chatID, "❌ هذه المادة غير موجودة!")
		return
	}
	s.Set(session.KeySubject, subject)
	s.EnterMenu(session.MenuAddLectureName)
	if len(existing) > 0 {
		d.reply(ctx, chatID, "المحاضرات الحالية: "+strings.Join(existing, ", "))
	}
	d.replyKB(ctx, chatID, "✏️ أدخل اسم المحاضرة الجديدة:", navKeyboard())
}

func (d *Dispatcher) addLecture(ctx context.Context, s *session.Session, chatID int64, name string) {
	subject := s.Get(session.KeySubject)
	if subject == "" {
		d.reply(ctx, chatID, "❌ حدث خطأ. أعد المحاولة.")
		d.showSubjectSelect(ctx, s, chatID, session.MenuAddLectureSubject, "📌 اختر المادة لإضافة المحاضرة إليها:")
		return
	}
	err := d.stores.Catalog.Update(ctx, func(c *catalog.Catalog) error {
		return c.AddLecture(subject, name)
	})
	switch {
	case shared.IsAlreadyExists(err):
		d.reply(ctx, chatID, "❌ المحاضرة موجودة بالفعل!")
	case shared.IsValidation(err):
		d.reply(ctx, chatID, "❌ أدخل اسم محاضرة صالح.")
		return
	case err != nil:
		d.fail(ctx, chatID, "add lecture", err)
		return
	default:
		d.reply(ctx, chatID, "✅ تم إضافة المحاضرة: "+strings.TrimSpace(name)+" في المادة: "+subject)
	}
	d.showAdminPanel(ctx, s, chatID)
}

// uploadFile stores an admin attachment as a catalog entry. Only the
// Telegram file reference is kept; bytes stay on Telegram's servers.
func (d *Dispatcher) uploadFile(ctx context.Context, s *session.Session, msg *telegram.Message) {
	chatID := msg.Chat.ID

	var fileID, fileName string
	var fileSize int64
	switch {
	case msg.Document != nil:
		fileID, fileName, fileSize = msg.Document.FileID, msg.Document.FileName, msg.Document.FileSize
	case msg.Audio != nil:
		fileID, fileName, fileSize = msg.Audio.FileID, msg.Audio.FileName, msg.Audio.FileSize
	case msg.Video != nil:
		fileID, fileName, fileSize = msg.Video.FileID, msg.Video.FileName, msg.Video.FileSize
	default:
		d.reply(ctx, chatID, "❌ لم يتم التعرف على أي ملف. أعد المحاولة أو استخدم زر إلغاء الرفع.")
		return
	}

	if !d.allowedUpload(fileName, fileSize) {
		d.reply(ctx, chatID, "❌ نوع الملف أو حجمه غير مسموح. الأنواع: PDF/PPT/صوت/فيديو.")
		return
	}

	subject := s.Get(session.KeySubject)
	lecture := s.Get(session.KeyLecture)
	if fileName == "" {
		fileName = subject + "-" + lecture + "-" + fileID
	}

	err := d.stores.Catalog.Update(ctx, func(c *catalog.Catalog) error {
		return c.AddFile(subject, lecture, fileName, fileID)
	})
	switch {
	case shared.IsAlreadyExists(err):
		d.reply(ctx, chatID, "❌ يوجد ملف بنفس الاسم بالفعل.")
		return
	case err != nil:
		d.fail(ctx, chatID, "upload", err)
		return
	}

	d.log.Info("catalog file added",
		logger.String("subject", subject),
		logger.String("lecture", lecture),
		logger.String("file", fileName),
	)
	d.reply(ctx, chatID, "✅ تم رفع الملف: "+fileName)
	d.showAdminPanel(ctx, s, chatID)
}

func (d *Dispatcher) renameSubject(ctx context.Context, s *session.Session, chatID int64, newName string) {
	err := d.stores.Catalog.Update(ctx, func(c *catalog.Catalog) error {
		return c.RenameSubject(s.Get(session.KeySubject), newName)
	})
	switch {
	case shared.IsNotFound(err):
		d.reply(ctx, chatID, "❌ المادة غير موجودة.")
		return
	case shared.IsAlreadyExists(err):
		d.reply(ctx, chatID, "❌ يوجد مادة بنفس الاسم.")
		return
	case shared.IsValidation(err):
		d.reply(ctx, chatID, "❌ اسم غير صالح.")
		return
	case err != nil:
		d.fail(ctx, chatID, "rename subject", err)
		return
	}
	d.reply(ctx, chatID, "✅ تم تغيير اسم المادة إلى: "+strings.TrimSpace(newName))
	d.showAdminPanel(ctx, s, chatID)
}

func (d *Dispatcher) renameLecture(ctx context.Context, s *session.Session, chatID int64, newName string) {
	err := d.stores.Catalog.Update(ctx, func(c *catalog.Catalog) error {
		return c.RenameLecture(s.Get(session.KeySubject), s.Get(session.KeyLecture), newName)
	})
	switch {
	case shared.IsNotFound(err):
		d.reply(ctx, chatID, "❌ المحاضرة غير موجودة.")
		return
	case shared.IsAlreadyExists(err):
		d.reply(ctx, chatID, "❌ توجد محاضرة بنفس الاسم.")
		return
	case shared.IsValidation(err):
		d.reply(ctx, chatID, "❌ اسم غير صالح.")
		return
	case err != nil:
		d.fail(ctx, chatID, "rename lecture", err)
		return
	}
	d.reply(ctx, chatID, "✅ تم تغيير اسم المحاضرة إلى: "+strings.TrimSpace(newName))
	d.showAdminPanel(ctx, s, chatID)
}

func (d *Dispatcher) renameFile(ctx context.Context, s *session.Session, chatID int64, newName string) {
	err := d.stores.Catalog.Update(ctx, func(c *catalog.Catalog) error {
		return c.RenameFile(s.Get(session.KeySubject), s.Get(session.KeyLecture), s.Get(session.KeyFile), newName)
	})
	switch {
	case shared.IsNotFound(err):
		d.reply(ctx, chatID, "❌ الملف غير موجود.")
		return
	case shared.IsAlreadyExists(err):
		d.reply(ctx, chatID, "❌ يوجد ملف بنفس الاسم.")
		return
	case shared.IsValidation(err):
		d.reply(ctx, chatID, "❌ اسم غير صالح.")
		return
	case err != nil:
		d.fail(ctx, chatID, "rename file", err)
		return
	}
	d.reply(ctx, chatID, "✅ تم تغيير اسم الملف إلى: "+strings.TrimSpace(newName))
	d.showAdminPanel(ctx, s, chatID)
}

// confirmDelete runs a catalog deletion on confirmation. A target that
// vanished meanwhile still reports success; the end state is the same.
func (d *Dispatcher) confirmDelete(ctx context.Context, s *session.Session, chatID int64, text string, del func(c *catalog.Catalog) error) {
	switch text {
	case btnConfirmDel:
		err := d.stores.Catalog.Update(ctx, del)
		if err != nil && !shared.IsNotFound(err) {
			d.fail(ctx, chatID, "delete content", err)
			return
		}
		d.reply(ctx, chatID, "✅ تم الحذف.")
		d.showAdminPanel(ctx, s, chatID)
	case btnCancelAction:
		d.showAdminPanel(ctx, s, chatID)
	}
}
