package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/campus-hub/campus-content-bot/internal/application/broadcast"
	"github.com/campus-hub/campus-content-bot/internal/domain/identity"
	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/external/telegram"
	"github.com/campus-hub/campus-content-bot/internal/interface/telegram/session"
	"github.com/campus-hub/campus-content-bot/pkg/logger"
	"github.com/campus-hub/campus-content-bot/pkg/timeutil"
)

// handleAdmin routes the admin console. Returns false when nothing in the
// console claims the message.
func (d *Dispatcher) handleAdmin(ctx context.Context, s *session.Session, msg *telegram.Message, text string) bool {
	chatID := msg.Chat.ID

	if text == btnAdminPanel {
		d.showAdminPanel(ctx, s, chatID)
		return true
	}

	if d.stores.Admins.IsOwner(s.UserID) {
		if d.handleAdminManagement(ctx, s, msg, text) {
			return true
		}
	}
	if d.handleContent(ctx, s, msg, text) {
		return true
	}
	if d.handleStudents(ctx, s, chatID, text) {
		return true
	}
	if d.handleImport(ctx, s, msg, text) {
		return true
	}
	if d.handleComplaintsConsole(ctx, s, chatID, text) {
		return true
	}
	if d.handleBroadcast(ctx, s, msg, text) {
		return true
	}

	if text == btnStats {
		if !d.requireCap(ctx, chatID, s.UserID, identity.CapStats) {
			return true
		}
		d.sendStats(ctx, chatID)
		return true
	}
	return false
}

// ── Admin roster management (owner only) ────────────────────────────────

func (d *Dispatcher) handleAdminManagement(ctx context.Context, s *session.Session, msg *telegram.Message, text string) bool {
	chatID := msg.Chat.ID

	if text == btnManageAdmins {
		d.showManageAdmins(ctx, s, chatID)
		return true
	}

	switch s.Menu {
	case session.MenuManageAdmins:
		switch text {
		case btnListAdmins:
			d.showAdminsList(ctx, s, chatID, session.MenuListAdmins, 0)
		case btnAddAdmin:
			s.EnterMenu(session.MenuAddAdminMethod)
			d.replyKB(ctx, chatID, "اختر طريقة إضافة الأدمن:", addAdminMethodKeyboard())
		case btnEditAdminPerms:
			d.showAdminsList(ctx, s, chatID, session.MenuEditAdminPermsSelect, 0)
		case btnDeleteAdmin:
			d.showAdminsList(ctx, s, chatID, session.MenuDeleteAdminSelect, 0)
		default:
			return false
		}
		return true

	case session.MenuAddAdminMethod:
		switch text {
		case btnAddByID:
			s.EnterMenu(session.MenuAddAdminByID)
			d.replyKB(ctx, chatID, "أدخل ID الأدمن الجديد (أرقام):", navKeyboard())
		case btnAddByUsername:
			s.EnterMenu(session.MenuAddAdminByUsername)
			d.replyKB(ctx, chatID, "أدخل Username بدون @:", navKeyboard())
		case btnAddByContact:
			s.EnterMenu(session.MenuAddAdminByContact)
			d.replyKB(ctx, chatID, "أرسل جهة الاتصال الخاصة بالمرشح (إذا كان user_id متاحًا).", contactRequestKeyboard())
		default:
			return false
		}
		return true

	case session.MenuAddAdminByID:
		id, err := strconv.ParseInt(text, 10, 64)
		if err != nil || id <= 0 {
			d.reply(ctx, chatID, "❌ أدخل ID رقمي صالح.")
			return true
		}
		d.addAdmin(ctx, s, chatID, id)
		return true

	case session.MenuAddAdminByUsername:
		ident, found, err := d.stores.Identities.FindByUsername(text)
		if err != nil {
			d.fail(ctx, chatID, "add admin", err)
			return true
		}
		if !found {
			d.reply(ctx, chatID, "❌ لم يتم العثور على هذا المستخدم في سجل البوت. اطلب منه بدء محادثة مع البوت أو استخدم طريقة ID.")
			return true
		}
		d.addAdmin(ctx, s, chatID, ident.ID)
		return true

	case session.MenuAddAdminByContact:
		if msg.Contact == nil {
			d.reply(ctx, chatID, "أرسل جهة اتصال صالحة أو ارجع للخلف.")
			return true
		}
		if msg.Contact.UserID == 0 {
			d.reply(ctx, chatID, "❌ هذه الجهة لا تحتوي user_id. اطلب من المرشح بدء محادثة مع البوت أو استخدم ID/Username.")
			return true
		}
		d.addAdmin(ctx, s, chatID, msg.Contact.UserID)
		return true

	case session.MenuEditAdminPermsSelect:
		if d.paginateAdmins(ctx, s, chatID, session.MenuEditAdminPermsSelect, text) {
			return true
		}
		id, ok := parseAdminID(text)
		if !ok {
			return true
		}
		if d.stores.Admins.IsOwner(id) {
			d.reply(ctx, chatID, "❌ لا يمكن تعديل صلاحيات المالك.")
			return true
		}
		s.SetInt64(session.KeyAdminID, id)
		d.showEditAdminPerms(ctx, s, chatID)
		return true

	case session.MenuEditAdminPerms:
		d.togglePerm(ctx, s, chatID, text)
		return true

	case session.MenuDeleteAdminSelect:
		if d.paginateAdmins(ctx, s, chatID, session.MenuDeleteAdminSelect, text) {
			return true
		}
		id, ok := parseAdminID(text)
		if !ok {
			return true
		}
		if d.stores.Admins.IsOwner(id) {
			d.reply(ctx, chatID, "❌ لا يمكن حذف المالك.")
			return true
		}
		s.SetInt64(session.KeyAdminID, id)
		s.EnterMenu(session.MenuDeleteAdminConfirm)
		d.replyKB(ctx, chatID, "⚠️ حذف الأدمن:\n"+d.adminLabel(id)+"\nتأكيد؟", confirmDeleteKeyboard())
		return true

	case session.MenuDeleteAdminConfirm:
		switch text {
		case btnConfirmDel:
			id := s.GetInt64(session.KeyAdminID, 0)
			if err := d.stores.Admins.Delete(ctx, id); err != nil && !shared.IsNotFound(err) {
				d.fail(ctx, chatID, "delete admin", err)
				return true
			}
			d.reply(ctx, chatID, "✅ تم حذف الأدمن.")
			d.showManageAdmins(ctx, s, chatID)
		case btnCancelAction:
			d.showManageAdmins(ctx, s, chatID)
		}
		return true

	case session.MenuListAdmins:
		return d.paginateAdmins(ctx, s, chatID, session.MenuListAdmins, text)
	}
	return false
}

func (d *Dispatcher) paginateAdmins(ctx context.Context, s *session.Session, chatID int64, menu session.Menu, text string) bool {
	page := s.GetInt(session.KeyAdminsPage, 0)
	switch text {
	case btnNext:
		d.showAdminsList(ctx, s, chatID, menu, page+1)
		return true
	case btnPrev:
		if page > 0 {
			d.showAdminsList(ctx, s, chatID, menu, page-1)
			return true
		}
	}
	return false
}

func (d *Dispatcher) addAdmin(ctx context.Context, s *session.Session, chatID, id int64) {
	if d.stores.Admins.IsOwner(id) {
		d.reply(ctx, chatID, "المستخدم هو المالك بالفعل.")
		d.showManageAdmins(ctx, s, chatID)
		return
	}
	err := d.stores.Admins.Add(ctx, id)
	switch {
	case shared.IsAlreadyExists(err):
		d.reply(ctx, chatID, "❌ هذا الحساب أدمن بالفعل.")
	case err != nil:
		d.fail(ctx, chatID, "add admin", err)
		return
	default:
		d.log.Info("admin added", logger.UserID(id))
		d.reply(ctx, chatID, "✅ تم إضافة الأدمن: "+d.adminLabel(id))
	}
	d.showManageAdmins(ctx, s, chatID)
}

// togglePerm matches the tapped row back to its capability by label
// prefix and flips the grant.
func (d *Dispatcher) togglePerm(ctx context.Context, s *session.Session, chatID int64, text string) {
	adminID := s.GetInt64(session.KeyAdminID, 0)
	for _, c := range identity.AllCapabilities {
		if !strings.HasPrefix(text, c.Label()) {
			continue
		}
		on, err := d.stores.Admins.Toggle(ctx, adminID, c)
		if err != nil {
			d.fail(ctx, chatID, "toggle capability", err)
			return
		}
		d.log.Info("capability toggled",
			logger.UserID(adminID),
			logger.String("capability", string(c)),
			logger.Bool("granted", on),
		)
		d.showEditAdminPerms(ctx, s, chatID)
		return
	}
	d.reply(ctx, chatID, "اختر أحد الأسطر لتبديل حالته.")
}

// parseAdminID extracts the numeric id from a roster row ("ID:123 | …").
func parseAdminID(text string) (int64, bool) {
	rest, ok := strings.CutPrefix(text, "ID:")
	if !ok {
		return 0, false
	}
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(rest[:i], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ── Complaints console ──────────────────────────────────────────────────

func (d *Dispatcher) handleComplaintsConsole(ctx context.Context, s *session.Session, chatID int64, text string) bool {
	if text == btnViewComplaints {
		if !d.requireCap(ctx, chatID, s.UserID, identity.CapComplaints) {
			return true
		}
		d.showComplaints(ctx, s, chatID, 0)
		return true
	}

	if s.Menu != session.MenuComplaintsList {
		return false
	}
	if !d.requireCap(ctx, chatID, s.UserID, identity.CapComplaints) {
		return true
	}

	page := s.GetInt(session.KeyComplaintsPage, 0)
	switch text {
	case btnNext:
		d.showComplaints(ctx, s, chatID, page+1)
		return true
	case btnPrev:
		if page > 0 {
			d.showComplaints(ctx, s, chatID, page-1)
		}
		return true
	}

	idText, ok := strings.CutPrefix(text, "شكوى/اقتراح #")
	if !ok {
		return false
	}
	id, err := strconv.Atoi(strings.TrimSpace(idText))
	if err != nil {
		return false
	}
	d.showComplaintDetail(ctx, chatID, id)
	return true
}

func (d *Dispatcher) showComplaintDetail(ctx context.Context, chatID int64, id int) {
	log, err := d.stores.Complaints.Load()
	if err != nil {
		d.fail(ctx, chatID, "complaints", err)
		return
	}
	c, found := log.Find(id)
	if !found {
		d.reply(ctx, chatID, "❌ لم يتم العثور على هذه الشكوى/الاقتراح.")
		return
	}
	info := fmt.Sprintf("📄 شكوى/اقتراح #%d\n- المرسل: %s (ID: %d)\n- الوقت: %s\n\nالنص:\n%s",
		c.ID, c.UserName, c.UserID, timeutil.FormatDateTimeStr(c.SentAt), c.Text)
	d.replyKB(ctx, chatID, info, navKeyboard())
}

// ── Broadcast ───────────────────────────────────────────────────────────

func (d *Dispatcher) handleBroadcast(ctx context.Context, s *session.Session, msg *telegram.Message, text string) bool {
	chatID := msg.Chat.ID

	if text == btnBroadcast {
		if !d.requireCap(ctx, chatID, s.UserID, identity.CapBroadcast) {
			return true
		}
		d.startBroadcast(ctx, s, chatID)
		return true
	}

	switch s.Menu {
	case session.MenuBroadcastPrompt:
		if !d.requireCap(ctx, chatID, s.UserID, identity.CapBroadcast) {
			return true
		}
		d.collectBroadcast(ctx, s, msg)
		return true

	case session.MenuBroadcastConfirm:
		if !d.requireCap(ctx, chatID, s.UserID, identity.CapBroadcast) {
			return true
		}
		switch text {
		case btnConfirmSend:
			d.runBroadcast(ctx, s, chatID)
		case btnCancelAction:
			d.clearBroadcast(s)
			d.showAdminPanel(ctx, s, chatID)
		}
		return true
	}
	return false
}

func (d *Dispatcher) startBroadcast(ctx context.Context, s *session.Session, chatID int64) {
	s.EnterMenu(session.MenuBroadcastPrompt)
	d.replyKB(ctx, chatID, "📢 أرسل الآن رسالة البث: نص فقط أو صورة/فيديو مع كابشن.", cancellableKeyboard(btnCancelAction))
}

// collectBroadcast captures the message to fan out: plain text, or a
// photo/video reference with its caption.
func (d *Dispatcher) collectBroadcast(ctx context.Context, s *session.Session, msg *telegram.Message) {
	chatID := msg.Chat.ID
	caption := strings.TrimSpace(msg.Caption)
	if caption == "" {
		caption = strings.TrimSpace(msg.Text)
	}

	switch {
	case msg.LargestPhoto() != nil:
		s.Set(keyBroadcastKind, string(broadcast.KindPhoto))
		s.Set(keyBroadcastFileID, msg.LargestPhoto().FileID)
		s.Set(keyBroadcastText, caption)
	case msg.Video != nil:
		s.Set(keyBroadcastKind, string(broadcast.KindVideo))
		s.Set(keyBroadcastFileID, msg.Video.FileID)
		s.Set(keyBroadcastText, caption)
	case caption != "":
		s.Set(keyBroadcastKind, string(broadcast.KindText))
		s.Set(keyBroadcastText, caption)
	default:
		d.reply(ctx, chatID, "❌ لم يتم التقاط محتوى للإرسال. أعد المحاولة.")
		return
	}

	s.EnterMenu(session.MenuBroadcastConfirm)
	d.replyKB(ctx, chatID, "📤 جاهز للإرسال. اضغط تأكيد للإرسال.", confirmSendKeyboard())
}

func (d *Dispatcher) runBroadcast(ctx context.Context, s *session.Session, chatID int64) {
	content := broadcast.Content{
		Kind:    broadcast.Kind(s.Get(keyBroadcastKind)),
		Text:    s.Get(keyBroadcastText),
		FileID:  s.Get(keyBroadcastFileID),
		Caption: s.Get(keyBroadcastText),
	}
	d.clearBroadcast(s)

	recipients, err := d.stores.Seen.IDs()
	if err != nil {
		d.fail(ctx, chatID, "broadcast", err)
		return
	}

	res := d.engine.Send(ctx, recipients, content)
	d.metrics.BroadcastSent.Add(float64(res.Sent))
	d.metrics.BroadcastFailed.Add(float64(res.Failed))

	d.reply(ctx, chatID, fmt.Sprintf("✅ تم الإرسال إلى %d مستخدم. أخفق %d.", res.Sent, res.Failed))
	d.showAdminPanel(ctx, s, chatID)
}

func (d *Dispatcher) clearBroadcast(s *session.Session) {
	s.Delete(keyBroadcastKind)
	s.Delete(keyBroadcastText)
	s.Delete(keyBroadcastFileID)
}

// ── Stats ───────────────────────────────────────────────────────────────

func (d *Dispatcher) sendStats(ctx context.Context, chatID int64) {
	totalUsers, err := d.stores.Seen.Count()
	if err != nil {
		d.fail(ctx, chatID, "stats", err)
		return
	}
	st, err := d.stores.Stats.Load()
	if err != nil {
		d.fail(ctx, chatID, "stats", err)
		return
	}
	d.reply(ctx, chatID, st.Summarize(totalUsers).Render())
}
