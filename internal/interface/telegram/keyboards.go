package telegram

import (
	"github.com/campus-hub/campus-content-bot/internal/domain/identity"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/external/telegram"
)

// PageSize is how many rows a paginated list screen shows.
const PageSize = 10

// Button labels. The reply-keyboard text doubles as the wire protocol:
// the dispatcher matches inbound message text against these constants, so
// they must never drift from what the keyboards render.
const (
	btnBack         = "⬅️ رجوع للخلف"
	btnMain         = "🏠 القائمة الرئيسية"
	btnMainLegacy   = "⬅️ رجوع للقائمة الرئيسية"
	btnCancelUpload = "❌ إلغاء الرفع"
	btnCancelAction = "❌ إلغاء الأمر"
	btnConfirmDel   = "✅ تأكيد الحذف"
	btnConfirmSend  = "✅ تأكيد الإرسال"

	btnLectures = "📚 المحاضرات"
	btnMyData   = "👤 بياناتي"
	btnSuggest  = "📝 ارسال مقترح او شكوي لادارة الكلية"
	btnLogout   = "🚪 تسجيل الخروج"
	btnSchedule = "📆 الجدول الدراسي"
	btnAbsence  = "🕒 الغياب والحضور"

	btnAdminPanel     = "🛠️ خصائص الأدمن"
	btnViewComplaints = "📬 عرض المقترحات والشكاوي"

	btnAddSubject = "➕ إضافة مادة جديدة"
	btnAddLecture = "➕ إضافة محاضرة جديدة"
	btnAddFile    = "➕ إضافة عنصر جديد"

	btnRenameMenu    = "✏️ إعادة تسمية"
	btnDeleteMenu    = "🗑️ حذف"
	btnRenameSubject = "✏️ إعادة تسمية مادة"
	btnRenameLecture = "✏️ إعادة تسمية محاضرة"
	btnRenameFile    = "✏️ إعادة تسمية ملف"
	btnDeleteSubject = "🗑️ حذف مادة"
	btnDeleteLecture = "🗑️ حذف محاضرة"
	btnDeleteFile    = "🗑️ حذف ملف"

	btnAddStudent     = "➕ إضافة طالب"
	btnEditStudent    = "✏️ تعديل طالب"
	btnDeleteStudent  = "🗑️ حذف طالب"
	btnSuspendStudent = "⏸️ إيقاف/إلغاء إيقاف حساب"

	btnSelectByCode   = "🔢 إدخال الكود"
	btnSelectFromList = "📋 عرض جميع الطلاب"
	btnEditName       = "✏️ تعديل الاسم"
	btnEditCode       = "🔢 تعديل الكود"
	btnUnsuspend      = "✅ إلغاء الإيقاف"

	btnImportCodes = "📥 استيراد أكواد CSV"
	btnBroadcast   = "📢 بث إشعار"
	btnStats       = "📊 إحصائيات البوت"

	btnManageAdmins   = "👑 إدارة الأدمنز"
	btnListAdmins     = "📋 عرض الأدمنز"
	btnAddAdmin       = "➕ إضافة أدمن"
	btnEditAdminPerms = "✏️ تعديل صلاحيات الأدمن"
	btnDeleteAdmin    = "🗑️ حذف أدمن"

	btnAddByID       = "🔢 إضافة عبر ID"
	btnAddByUsername = "🔤 إضافة عبر Username"
	btnAddByContact  = "📱 إضافة عبر جهة اتصال"
	btnSendContact   = "📱 أرسل جهة الاتصال الآن"

	btnNext = "▶️ التالي"
	btnPrev = "◀️ السابق"

	btnEnterCode = "برجاء إدخال كود الطالب"
)

// navKeyboard is the bare back/main pair shown under every inner screen.
func navKeyboard() *telegram.ReplyKeyboardMarkup {
	return telegram.NewKeyboard().
		Row(telegram.Button(btnBack)).
		Row(telegram.Button(btnMain)).
		Build()
}

// listKeyboard renders one item per row, with navigation appended.
func listKeyboard(items []string) *telegram.ReplyKeyboardMarkup {
	kb := telegram.NewKeyboard()
	for _, item := range items {
		kb.Row(telegram.Button(item))
	}
	kb.Row(telegram.Button(btnBack))
	kb.Row(telegram.Button(btnMain))
	return kb.Build()
}

// pagedKeyboard renders one page of items with prev/next rows as needed.
func pagedKeyboard(items []string, page, total int) *telegram.ReplyKeyboardMarkup {
	kb := telegram.NewKeyboard()
	for _, item := range items {
		kb.Row(telegram.Button(item))
	}
	var nav []telegram.KeyboardButton
	if page > 0 {
		nav = append(nav, telegram.Button(btnPrev))
	}
	if (page+1)*PageSize < total {
		nav = append(nav, telegram.Button(btnNext))
	}
	if len(nav) > 0 {
		kb.Row(nav...)
	}
	kb.Row(telegram.Button(btnBack))
	kb.Row(telegram.Button(btnMain))
	return kb.Build()
}

// pageCount returns how many pages a list of the given length spans.
func pageCount(total int) int {
	if total <= 0 {
		return 1
	}
	return (total-1)/PageSize + 1
}

// pageSlice returns the slice of items on the given page.
func pageSlice(items []string, page int) []string {
	start := page * PageSize
	if start >= len(items) {
		return nil
	}
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func confirmDeleteKeyboard() *telegram.ReplyKeyboardMarkup {
	return telegram.NewKeyboard().
		Row(telegram.Button(btnConfirmDel)).
		Row(telegram.Button(btnCancelAction)).
		Row(telegram.Button(btnBack)).
		Row(telegram.Button(btnMain)).
		Build()
}

func confirmSendKeyboard() *telegram.ReplyKeyboardMarkup {
	return telegram.NewKeyboard().
		Row(telegram.Button(btnConfirmSend)).
		Row(telegram.Button(btnCancelAction)).
		Row(telegram.Button(btnBack)).
		Row(telegram.Button(btnMain)).
		Build()
}

func cancellableKeyboard(cancelLabel string) *telegram.ReplyKeyboardMarkup {
	return telegram.NewKeyboard().
		Row(telegram.Button(cancelLabel)).
		Row(telegram.Button(btnBack)).
		Row(telegram.Button(btnMain)).
		Build()
}

func loginKeyboard() *telegram.ReplyKeyboardMarkup {
	return telegram.NewKeyboard().
		Row(telegram.Button(btnEnterCode)).
		Build()
}

func mainMenuKeyboard(isAdmin bool) *telegram.ReplyKeyboardMarkup {
	kb := telegram.NewKeyboard()
	if isAdmin {
		kb.Row(telegram.Button(btnAdminPanel))
	}
	kb.Row(telegram.Button(btnLectures))
	kb.Row(telegram.Button(btnMyData))
	kb.Row(telegram.Button(btnSuggest))
	kb.Row(telegram.Button(btnLogout))
	return kb.Build()
}

func myDataKeyboard(studentName string) *telegram.ReplyKeyboardMarkup {
	return telegram.NewKeyboard().
		Row(telegram.Button("📝 الاسم: " + studentName)).
		Row(telegram.Button(btnSchedule)).
		Row(telegram.Button(btnAbsence)).
		Row(telegram.Button(btnBack)).
		Row(telegram.Button(btnMain)).
		Build()
}

// adminPanelKeyboard shows only the sections the admin's current grants
// allow. can is checked live so revoked grants vanish on next render.
func adminPanelKeyboard(isOwner bool, can func(identity.Capability) bool) *telegram.ReplyKeyboardMarkup {
	kb := telegram.NewKeyboard()

	if isOwner {
		kb.Row(telegram.Button(btnManageAdmins))
	}
	if can(identity.CapContent) {
		kb.Row(telegram.Button(btnAddSubject), telegram.Button(btnAddLecture))
		kb.Row(telegram.Button(btnAddFile))
		kb.Row(telegram.Button(btnRenameMenu), telegram.Button(btnDeleteMenu))
	}

	var studentRow []telegram.KeyboardButton
	if can(identity.CapStudentAddDelete) {
		studentRow = append(studentRow, telegram.Button(btnAddStudent))
	}
	if can(identity.CapStudentEdit) {
		studentRow = append(studentRow, telegram.Button(btnEditStudent))
	}
	if len(studentRow) > 0 {
		kb.Row(studentRow...)
	}
	if can(identity.CapStudentAddDelete) {
		kb.Row(telegram.Button(btnDeleteStudent))
	}
	if can(identity.CapSuspend) {
		kb.Row(telegram.Button(btnSuspendStudent))
	}
	if can(identity.CapStudentAddDelete) {
		kb.Row(telegram.Button(btnImportCodes))
	}
	if can(identity.CapComplaints) {
		kb.Row(telegram.Button(btnViewComplaints))
	}

	var lastRow []telegram.KeyboardButton
	if can(identity.CapBroadcast) {
		lastRow = append(lastRow, telegram.Button(btnBroadcast))
	}
	if can(identity.CapStats) {
		lastRow = append(lastRow, telegram.Button(btnStats))
	}
	if len(lastRow) > 0 {
		kb.Row(lastRow...)
	}

	kb.Row(telegram.Button(btnBack))
	kb.Row(telegram.Button(btnMain))
	return kb.Build()
}

func manageAdminsKeyboard() *telegram.ReplyKeyboardMarkup {
	return telegram.NewKeyboard().
		Row(telegram.Button(btnListAdmins)).
		Row(telegram.Button(btnAddAdmin)).
		Row(telegram.Button(btnEditAdminPerms)).
		Row(telegram.Button(btnDeleteAdmin)).
		Row(telegram.Button(btnBack)).
		Row(telegram.Button(btnMain)).
		Build()
}

func addAdminMethodKeyboard() *telegram.ReplyKeyboardMarkup {
	return telegram.NewKeyboard().
		Row(telegram.Button(btnAddByID)).
		Row(telegram.Button(btnAddByUsername)).
		Row(telegram.Button(btnAddByContact)).
		Row(telegram.Button(btnBack)).
		Row(telegram.Button(btnMain)).
		Build()
}

func contactRequestKeyboard() *telegram.ReplyKeyboardMarkup {
	return telegram.NewKeyboard().
		Row(telegram.ContactButton(btnSendContact)).
		Row(telegram.Button(btnBack)).
		Row(telegram.Button(btnMain)).
		Build()
}

// permToggleKeyboard renders one row per capability with its current
// state appended, so tapping a row flips that grant.
func permToggleKeyboard(caps identity.CapabilitySet) *telegram.ReplyKeyboardMarkup {
	kb := telegram.NewKeyboard()
	for _, c := range identity.AllCapabilities {
		state := "❌"
		if caps.Has(c) {
			state = "✅"
		}
		kb.Row(telegram.Button(c.Label() + " " + state))
	}
	kb.Row(telegram.Button(btnBack))
	kb.Row(telegram.Button(btnMain))
	return kb.Build()
}
