// Package telegram is the conversational interface of the bot: it maps
// inbound messages to the session's current menu, runs the matching
// workflow step and renders the next screen as a reply keyboard.
package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/campus-hub/campus-content-bot/internal/application/broadcast"
	"github.com/campus-hub/campus-content-bot/internal/application/importer"
	"github.com/campus-hub/campus-content-bot/internal/domain/enrollment"
	"github.com/campus-hub/campus-content-bot/internal/domain/identity"
	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/external/telegram"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/metrics"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/file"
	"github.com/campus-hub/campus-content-bot/internal/interface/telegram/session"
	"github.com/campus-hub/campus-content-bot/pkg/logger"
	"github.com/campus-hub/campus-content-bot/pkg/timeutil"
)

// Workflow-transient context keys. These are never restored by "back".
const (
	keyPendingComplaint = "pending_complaint_text"
	keyNewStudentCode   = "new_student_code"
	keyBroadcastKind    = "broadcast_kind"
	keyBroadcastText    = "broadcast_text"
	keyBroadcastFileID  = "broadcast_file_id"
)

// API is the outbound Telegram surface the dispatcher needs. The
// concrete client satisfies it; tests substitute a fake.
type API interface {
	broadcast.Sender
	SendMessage(ctx context.Context, params telegram.SendMessageParams) (*telegram.Message, error)
	SendWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *telegram.ReplyKeyboardMarkup) (*telegram.Message, error)
	SendDocument(ctx context.Context, chatID int64, fileID, caption string) (*telegram.Message, error)
	GetFile(ctx context.Context, fileID string) (*telegram.File, error)
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)
}

// Dispatcher routes one inbound message through the session state
// machine. It is safe for concurrent use as long as the caller holds the
// per-user session lock while calling Handle.
type Dispatcher struct {
	api       API
	stores    *file.Stores
	importer  *importer.Importer
	engine    *broadcast.Engine
	metrics   *metrics.Metrics
	log       *logger.Logger
	ownerID   int64
	maxUpload int64
}

// NewDispatcher wires the dispatcher over its collaborators.
func NewDispatcher(api API, stores *file.Stores, imp *importer.Importer, engine *broadcast.Engine, m *metrics.Metrics, ownerID, maxUpload int64, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		api:       api,
		stores:    stores,
		importer:  imp,
		engine:    engine,
		metrics:   m,
		log:       log,
		ownerID:   ownerID,
		maxUpload: maxUpload,
	}
}

// Handle processes one inbound message against the user's session.
func (d *Dispatcher) Handle(ctx context.Context, s *session.Session, msg *telegram.Message) {
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if cmd := telegram.ExtractCommand(msg); cmd != "" {
		if d.handleCommand(ctx, s, chatID, cmd) {
			return
		}
	}

	// A binding persisted before a restart counts as logged in.
	if !s.LoggedIn() {
		d.hydrateLogin(s)
	}
	if !s.LoggedIn() {
		d.handleLogin(ctx, s, chatID, text)
		return
	}

	switch text {
	case btnMain, btnMainLegacy:
		d.showMainMenu(ctx, s, chatID)
		return
	case btnBack:
		d.goBack(ctx, s, chatID)
		return
	}

	if s.Menu == session.MenuAddFileUpload && text == btnCancelUpload {
		d.showMainMenu(ctx, s, chatID)
		return
	}

	if text == btnLogout {
		d.logout(ctx, s, chatID)
		return
	}

	if d.handleSelfService(ctx, s, msg, text) {
		return
	}
	if d.handleBrowsing(ctx, s, chatID, text) {
		return
	}

	if d.stores.Admins.IsAdmin(s.UserID) {
		if d.handleAdmin(ctx, s, msg, text) {
			return
		}
	}

	d.reply(ctx, chatID, "من فضلك اختر من القوائم المتاحة أو استخدم أزرار التنقل.")
}

// handleCommand runs the slash commands. Unknown commands fall through
// to the regular text flow.
func (d *Dispatcher) handleCommand(ctx context.Context, s *session.Session, chatID int64, cmd string) bool {
	switch cmd {
	case "start":
		if !s.LoggedIn() {
			d.hydrateLogin(s)
		}
		if s.LoggedIn() {
			d.showMainMenu(ctx, s, chatID)
			return true
		}
		welcome := "👋 أهلاً بك في بوت الكلية!\n\nمن فضلك أدخل كود الطالب الخاص بك:"
		d.replyKB(ctx, chatID, welcome, loginKeyboard())
		return true
	case "broadcast":
		if d.stores.Admins.HasCapability(s.UserID, identity.CapBroadcast) {
			d.startBroadcast(ctx, s, chatID)
		}
		return true
	case "stats":
		if d.stores.Admins.HasCapability(s.UserID, identity.CapStats) {
			d.sendStats(ctx, chatID)
		}
		return true
	}
	return false
}

// ── Login ───────────────────────────────────────────────────────────────

// hydrateLogin rebuilds the in-memory login binding from the persisted
// login log after a restart. Without the last known code the binding is
// incomplete and the user is asked to log in again.
func (d *Dispatcher) hydrateLogin(s *session.Session) {
	name, ok, err := d.stores.Logins.Get(s.UserID)
	if err != nil || !ok {
		return
	}
	ident, found, err := d.stores.Identities.Get(s.UserID)
	if err != nil || !found || ident.LastCode == "" {
		return
	}
	s.Code = ident.LastCode
	s.StudentName = name
}

func (d *Dispatcher) handleLogin(ctx context.Context, s *session.Session, chatID int64, text string) {
	if text == "" || text == btnEnterCode {
		d.reply(ctx, chatID, "من فضلك أدخل كود الطالب:")
		return
	}

	code := enrollment.NormalizeCode(text)
	if code == "" || len(code) < enrollment.MinCodeLength {
		d.reply(ctx, chatID, "من فضلك اكتب كود الطالب بالأرقام فقط.")
		return
	}

	suspensions, err := d.stores.Suspensions.Load()
	if err != nil {
		d.fail(ctx, chatID, "login", err)
		return
	}
	if susp, ok := suspensions.Get(code); ok {
		reason := susp.Reason
		if reason == "" {
			reason = "بدون سبب مذكور"
		}
		d.reply(ctx, chatID, "🚫 حسابك موقوف مؤقتًا.\nالسبب: "+reason+"\nللاستفسار يرجى مراسلة الإدارة.")
		return
	}

	dir, err := d.stores.Enrollment.Load()
	if err != nil {
		d.fail(ctx, chatID, "login", err)
		return
	}
	rec, err := dir.Find(code)
	if shared.IsNotFound(err) {
		d.reply(ctx, chatID, "❌ كود غير صحيح. حاول مرة أخرى:")
		return
	}
	if err != nil {
		d.fail(ctx, chatID, "login", err)
		return
	}
	if rec.Name == "" {
		d.reply(ctx, chatID, "✅ الكود صحيح لكن لا يوجد اسم مسجّل لهذا الكود. رجاءً حدّث ملف الأكواد.")
		return
	}

	if err := d.stores.Logins.Bind(s.UserID, rec.Name); err != nil {
		d.fail(ctx, chatID, "login", err)
		return
	}
	if err := d.stores.Identities.Upsert(ctx, identity.Identity{ID: s.UserID, LastCode: code}); err != nil {
		d.log.Warn("recording login code failed", logger.UserID(s.UserID), logger.Err(err))
	}

	s.Code = code
	s.StudentName = rec.Name
	d.metrics.Logins.Inc()
	d.log.Info("student logged in", logger.UserID(s.UserID), logger.Code(code))

	d.reply(ctx, chatID, "✅ تم التحقق من الكود بنجاح! مرحباً "+rec.Name+" 🌟")
	d.showMainMenu(ctx, s, chatID)
}

func (d *Dispatcher) logout(ctx context.Context, s *session.Session, chatID int64) {
	if err := d.stores.Logins.Unbind(s.UserID); err != nil {
		d.fail(ctx, chatID, "logout", err)
		return
	}
	s.Code = ""
	s.StudentName = ""
	s.Reset()
	d.send(ctx, telegram.SendMessageParams{
		ChatID:      chatID,
		Text:        "🚪 تم تسجيل الخروج بنجاح.\nأدخل كود الطالب لتسجيل الدخول من جديد:",
		ReplyMarkup: telegram.RemoveKeyboard(),
	})
}

// ── Self-service: my data, complaints ───────────────────────────────────

func (d *Dispatcher) handleSelfService(ctx context.Context, s *session.Session, msg *telegram.Message, text string) bool {
	chatID := msg.Chat.ID

	if text == btnMyData {
		d.showMyData(ctx, s, chatID)
		return true
	}
	if s.Menu == session.MenuMyData {
		if text == btnSchedule || text == btnAbsence {
			d.reply(ctx, chatID, "❗ لم يتم إضافة هذه الميزة بعد")
		}
		return true
	}

	if text == btnSuggest {
		s.EnterMenu(session.MenuSuggestText)
		d.replyKB(ctx, chatID, "✍️ اكتب رسالتك (مقترح/شكوى) ثم أرسلها:", cancellableKeyboard(btnCancelAction))
		return true
	}
	if s.Menu == session.MenuSuggestText {
		if text == btnCancelAction {
			d.showMainMenu(ctx, s, chatID)
			return true
		}
		if text == "" {
			d.reply(ctx, chatID, "✍️ اكتب رسالتك نصًا ثم أرسلها.")
			return true
		}
		s.Set(keyPendingComplaint, text)
		s.EnterMenu(session.MenuSuggestConfirm)
		d.replyKB(ctx, chatID, "📨 رسالتك:\n"+text+"\n\nهل ترغب في إرسالها للإدارة؟", confirmSendKeyboard())
		return true
	}
	if s.Menu == session.MenuSuggestConfirm {
		switch text {
		case btnConfirmSend:
			d.sendComplaint(ctx, s, chatID)
		case btnCancelAction:
			d.showMainMenu(ctx, s, chatID)
		}
		return true
	}
	return false
}

func (d *Dispatcher) sendComplaint(ctx context.Context, s *session.Session, chatID int64) {
	text := strings.TrimSpace(s.Get(keyPendingComplaint))
	if text == "" {
		d.reply(ctx, chatID, "❌ لا توجد رسالة لإرسالها.")
		return
	}

	rec, err := d.stores.Complaints.Append(ctx, s.UserID, s.StudentName, s.Code, text, timeutil.Now())
	if err != nil {
		d.fail(ctx, chatID, "complaint", err)
		return
	}
	s.Delete(keyPendingComplaint)
	d.metrics.ComplaintsLogged.Inc()

	d.notifyComplaintHandlers(ctx, rec.ID, s, text)
	d.reply(ctx, chatID, "✅ تم إرسال رسالتك إلى إدارة الكلية. شكرًا لمشاركتك.")
	d.showMainMenu(ctx, s, chatID)
}

// notifyComplaintHandlers forwards a new complaint to the owner and every
// admin holding the complaints grant. Delivery failures are logged only.
func (d *Dispatcher) notifyComplaintHandlers(ctx context.Context, id int, s *session.Session, text string) {
	note := fmt.Sprintf("📬 شكوى/مقترح جديد #%d:\n- من: %s | ID: %d\n- الوقت: %s\n\nالمحتوى:\n%s",
		id, s.StudentName, s.UserID, timeutil.FormatDateTimeStr(timeutil.Now()), text)

	receivers := []int64{d.ownerID}
	for _, adminID := range d.stores.Admins.List() {
		if d.stores.Admins.HasCapability(adminID, identity.CapComplaints) {
			receivers = append(receivers, adminID)
		}
	}
	for _, adminID := range receivers {
		if _, err := d.api.SendText(ctx, adminID, note); err != nil {
			d.log.Warn("complaint notification failed", logger.ChatID(adminID), logger.Err(err))
		}
	}
}

// ── Browsing and downloads ──────────────────────────────────────────────

func (d *Dispatcher) handleBrowsing(ctx context.Context, s *session.Session, chatID int64, text string) bool {
	if text == btnLectures {
		d.showSubjects(ctx, s, chatID)
		return true
	}

	switch s.Menu {
	case session.MenuViewSubjects:
		d.showLectures(ctx, s, chatID, text)
		return true
	case session.MenuViewLectures:
		s.Set(session.KeyLecture, text)
		d.showFiles(ctx, s, chatID)
		return true
	case session.MenuViewFiles:
		d.deliverFile(ctx, s, chatID, text)
		return true
	}
	return false
}

func (d *Dispatcher) deliverFile(ctx context.Context, s *session.Session, chatID int64, fileName string) {
	subject := s.Get(session.KeySubject)
	lecture := s.Get(session.KeyLecture)

	cat, err := d.stores.Catalog.Load()
	if err != nil {
		d.fail(ctx, chatID, "download", err)
		return
	}
	entry, err := cat.File(subject, lecture, fileName)
	if err != nil {
		d.reply(ctx, chatID, "❌ الملف غير موجود! اختر من القائمة.")
		return
	}

	if _, err := d.api.SendDocument(ctx, chatID, entry.FileID, fileName); err != nil {
		d.fail(ctx, chatID, "download", err)
		return
	}
	if err := d.stores.Stats.RecordDownload(ctx, subject, lecture, fileName); err != nil {
		d.log.Warn("recording download failed", logger.Err(err))
	}
	d.metrics.Downloads.Inc()
}

// ── Navigation ──────────────────────────────────────────────────────────

func (d *Dispatcher) goBack(ctx context.Context, s *session.Session, chatID int64) {
	s.GoBack()
	d.renderMenu(ctx, s, chatID)
	s.EndRestore()
}

// ── Capability gate ─────────────────────────────────────────────────────

var capabilityDenials = map[identity.Capability]string{
	identity.CapContent:          "❌ ليس لديك صلاحية إدارة المحتوى.",
	identity.CapStudentAddDelete: "❌ ليس لديك صلاحية إضافة/حذف الطلاب.",
	identity.CapStudentEdit:      "❌ ليس لديك صلاحية تعديل بيانات الطالب.",
	identity.CapSuspend:          "❌ ليس لديك صلاحية الإيقاف/الإلغاء.",
	identity.CapComplaints:       "❌ ليس لديك صلاحية عرض الشكاوى.",
	identity.CapStats:            "❌ ليس لديك صلاحية الإحصائيات.",
	identity.CapBroadcast:        "❌ ليس لديك صلاحية بث الإشعارات.",
}

// requireCap re-checks the grant at the moment of the action, so a
// revocation takes effect mid-workflow, not just on the next panel render.
func (d *Dispatcher) requireCap(ctx context.Context, chatID, userID int64, c identity.Capability) bool {
	if d.stores.Admins.HasCapability(userID, c) {
		return true
	}
	d.reply(ctx, chatID, capabilityDenials[c])
	return false
}

// ── Send helpers ────────────────────────────────────────────────────────

func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string) {
	if _, err := d.api.SendText(ctx, chatID, text); err != nil {
		d.log.Error("sending reply failed", logger.ChatID(chatID), logger.Err(err))
	}
}

func (d *Dispatcher) replyKB(ctx context.Context, chatID int64, text string, kb *telegram.ReplyKeyboardMarkup) {
	if _, err := d.api.SendWithKeyboard(ctx, chatID, text, kb); err != nil {
		d.log.Error("sending reply failed", logger.ChatID(chatID), logger.Err(err))
	}
}

func (d *Dispatcher) send(ctx context.Context, params telegram.SendMessageParams) {
	if _, err := d.api.SendMessage(ctx, params); err != nil {
		d.log.Error("sending reply failed", logger.ChatID(params.ChatID), logger.Err(err))
	}
}

// fail logs an operation error and tells the user something went wrong.
// Lock timeouts additionally go to the owner: they point at a wedged or
// overloaded data directory, not a user mistake.
func (d *Dispatcher) fail(ctx context.Context, chatID int64, op string, err error) {
	if shared.IsLockTimeout(err) {
		d.metrics.LockTimeouts.Inc()
		report := fmt.Sprintf("⚠️ انتهت مهلة قفل الملف أثناء '%s':\n%v", op, err)
		if len(report) > maxPanicReport {
			report = report[:maxPanicReport]
		}
		if _, sendErr := d.api.SendText(ctx, d.ownerID, report); sendErr != nil {
			d.log.Warn("owner lock report not delivered", logger.Err(sendErr))
		}
	}
	d.log.Error("operation failed", logger.Operation(op), logger.ChatID(chatID), logger.Err(err))
	d.reply(ctx, chatID, "⚠️ حدث خطأ غير متوقع. حاول مرة أخرى.")
}
