package telegram

import (
	"context"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-content-bot/internal/application/broadcast"
	"github.com/campus-hub/campus-content-bot/internal/application/importer"
	"github.com/campus-hub/campus-content-bot/internal/domain/catalog"
	"github.com/campus-hub/campus-content-bot/internal/domain/enrollment"
	"github.com/campus-hub/campus-content-bot/internal/domain/identity"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/external/telegram"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/metrics"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/docstore"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/file"
	"github.com/campus-hub/campus-content-bot/internal/interface/telegram/session"
	"github.com/campus-hub/campus-content-bot/pkg/logger"
	"github.com/campus-hub/campus-content-bot/pkg/timeutil"
)

const (
	ownerID   = int64(1000)
	studentID = int64(2000)
	adminID   = int64(3000)
)

// fakeAPI records everything the dispatcher sends.
type fakeAPI struct {
	texts    []string
	docs     []string
	fileData []byte
}

func (f *fakeAPI) SendText(_ context.Context, _ int64, text string) (*telegram.Message, error) {
	f.texts = append(f.texts, text)
	return &telegram.Message{}, nil
}

func (f *fakeAPI) SendPhoto(_ context.Context, _ int64, _, caption string) (*telegram.Message, error) {
	f.texts = append(f.texts, caption)
	return &telegram.Message{}, nil
}

func (f *fakeAPI) SendVideo(_ context.Context, _ int64, _, caption string) (*telegram.Message, error) {
	f.texts = append(f.texts, caption)
	return &telegram.Message{}, nil
}

func (f *fakeAPI) SendMessage(_ context.Context, params telegram.SendMessageParams) (*telegram.Message, error) {
	f.texts = append(f.texts, params.Text)
	return &telegram.Message{}, nil
}

func (f *fakeAPI) SendWithKeyboard(_ context.Context, _ int64, text string, _ *telegram.ReplyKeyboardMarkup) (*telegram.Message, error) {
	f.texts = append(f.texts, text)
	return &telegram.Message{}, nil
}

func (f *fakeAPI) SendDocument(_ context.Context, _ int64, fileID, _ string) (*telegram.Message, error) {
	f.docs = append(f.docs, fileID)
	return &telegram.Message{}, nil
}

func (f *fakeAPI) GetFile(_ context.Context, fileID string) (*telegram.File, error) {
	return &telegram.File{FileID: fileID, FilePath: "documents/" + fileID}, nil
}

func (f *fakeAPI) DownloadFile(_ context.Context, _ string) ([]byte, error) {
	return f.fileData, nil
}

func (f *fakeAPI) lastText() string {
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

func (f *fakeAPI) sawText(want string) bool {
	for _, t := range f.texts {
		if t == want {
			return true
		}
	}
	return false
}

type harness struct {
	api      *fakeAPI
	stores   *file.Stores
	sessions *session.Manager
	d        *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := &fakeAPI{}
	log := logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
	stores := file.NewStores(t.TempDir(), docstore.DefaultLockOptions(), ownerID)
	require.NoError(t, stores.Admins.Load())

	d := NewDispatcher(
		api,
		stores,
		importer.New(stores.Enrollment),
		broadcast.NewEngine(api, 0, log),
		metrics.New(prometheus.NewRegistry()),
		ownerID,
		3*1024*1024*1024,
		log,
	)
	return &harness{api: api, stores: stores, sessions: session.NewManager(), d: d}
}

func (h *harness) send(userID int64, text string) {
	h.sendMsg(userID, &telegram.Message{Text: text})
}

func (h *harness) sendMsg(userID int64, msg *telegram.Message) {
	msg.Chat = &telegram.Chat{ID: userID, Type: "private"}
	msg.From = &telegram.User{ID: userID, FirstName: "Test"}
	h.sessions.Do(userID, func(s *session.Session) {
		h.d.Handle(context.Background(), s, msg)
	})
}

func (h *harness) session(userID int64) *session.Session {
	var out *session.Session
	h.sessions.Do(userID, func(s *session.Session) { out = s })
	return out
}

func (h *harness) seedStudent(t *testing.T, code, name string) {
	t.Helper()
	require.NoError(t, h.stores.Enrollment.Update(context.Background(), func(d *enrollment.Directory) error {
		return d.Add(code, name)
	}))
}

func (h *harness) login(t *testing.T, userID int64, code string) {
	t.Helper()
	h.send(userID, code)
	require.True(t, h.session(userID).LoggedIn(), "login with %q failed, last reply: %q", code, h.api.lastText())
}

func (h *harness) seedCatalog(t *testing.T) {
	t.Helper()
	require.NoError(t, h.stores.Catalog.Update(context.Background(), func(c *catalog.Catalog) error {
		if err := c.AddSubject("Anatomy"); err != nil {
			return err
		}
		if err := c.AddLecture("Anatomy", "Lecture 1"); err != nil {
			return err
		}
		return c.AddFile("Anatomy", "Lecture 1", "notes.pdf", "FILE123")
	}))
}

// ── Login ───────────────────────────────────────────────────────────────

func TestLoginSuccess(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "12345", "Ali Hassan")

	h.send(studentID, "12345")

	s := h.session(studentID)
	assert.True(t, s.LoggedIn())
	assert.Equal(t, "12345", s.Code)
	assert.Equal(t, "Ali Hassan", s.StudentName)
	assert.True(t, h.api.sawText("✅ تم التحقق من الكود بنجاح! مرحباً Ali Hassan 🌟"))

	// The binding survives in the login log.
	name, ok, err := h.stores.Logins.Get(studentID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Ali Hassan", name)
}

func TestLoginUnknownCode(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "12345", "Ali Hassan")

	h.send(studentID, "99999")

	assert.False(t, h.session(studentID).LoggedIn())
	assert.Equal(t, "❌ كود غير صحيح. حاول مرة أخرى:", h.api.lastText())
}

func TestLoginNormalizesArabicDigits(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "12345", "Ali Hassan")

	h.send(studentID, "١٢٣٤٥")

	assert.True(t, h.session(studentID).LoggedIn())
	assert.Equal(t, "12345", h.session(studentID).Code)
}

func TestLoginSuspendedAccountBlocked(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "12345", "Ali Hassan")
	require.NoError(t, h.stores.Suspensions.Update(context.Background(), func(set enrollment.SuspensionSet) error {
		set.Suspend("12345", "مخالفة", ownerID, timeutil.Now())
		return nil
	}))

	h.send(studentID, "12345")

	assert.False(t, h.session(studentID).LoggedIn())
	assert.Equal(t, "🚫 حسابك موقوف مؤقتًا.\nالسبب: مخالفة\nللاستفسار يرجى مراسلة الإدارة.", h.api.lastText())
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "12345", "Ali Hassan")
	h.login(t, studentID, "12345")

	h.send(studentID, btnLogout)

	assert.False(t, h.session(studentID).LoggedIn())
	_, ok, err := h.stores.Logins.Get(studentID)
	require.NoError(t, err)
	assert.False(t, ok)
}

// ── Browsing and downloads ──────────────────────────────────────────────

func TestBrowseAndDownload(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "12345", "Ali Hassan")
	h.seedCatalog(t)
	h.login(t, studentID, "12345")

	h.send(studentID, btnLectures)
	h.send(studentID, "Anatomy")
	h.send(studentID, "Lecture 1")
	h.send(studentID, "notes.pdf")

	assert.Equal(t, []string{"FILE123"}, h.api.docs)

	st, err := h.stores.Stats.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, st.DownloadsTotal)
}

func TestBackRestoresSubjectSelection(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "12345", "Ali Hassan")
	h.seedCatalog(t)
	h.login(t, studentID, "12345")

	h.send(studentID, btnLectures)
	h.send(studentID, "Anatomy")
	require.Equal(t, session.MenuViewLectures, h.session(studentID).Menu)

	h.send(studentID, "Lecture 1")
	require.Equal(t, session.MenuViewFiles, h.session(studentID).Menu)

	// Back pops to the lecture list with the subject still selected.
	h.send(studentID, btnBack)
	s := h.session(studentID)
	assert.Equal(t, session.MenuViewLectures, s.Menu)
	assert.Equal(t, "Anatomy", s.Get(session.KeySubject))
}

func TestMainMenuButtonResetsNavigation(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "12345", "Ali Hassan")
	h.seedCatalog(t)
	h.login(t, studentID, "12345")

	h.send(studentID, btnLectures)
	h.send(studentID, "Anatomy")
	h.send(studentID, btnMain)

	s := h.session(studentID)
	assert.Equal(t, session.MenuMain, s.Menu)
	assert.Empty(t, s.Get(session.KeySubject))
	assert.True(t, s.LoggedIn(), "reset must keep the login binding")
}

// ── Complaints ──────────────────────────────────────────────────────────

func TestComplaintFlow(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "12345", "Ali Hassan")
	h.login(t, studentID, "12345")

	h.send(studentID, btnSuggest)
	h.send(studentID, "القاعة ٣ بحاجة لتكييف")
	h.send(studentID, btnConfirmSend)

	log, err := h.stores.Complaints.Load()
	require.NoError(t, err)
	require.Equal(t, 1, log.Len())
	assert.Equal(t, "القاعة ٣ بحاجة لتكييف", log.Complaints[0].Text)
	assert.Equal(t, studentID, log.Complaints[0].UserID)

	assert.True(t, h.api.sawText("✅ تم إرسال رسالتك إلى إدارة الكلية. شكرًا لمشاركتك."))
}

func TestComplaintCancelWritesNothing(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "12345", "Ali Hassan")
	h.login(t, studentID, "12345")

	h.send(studentID, btnSuggest)
	h.send(studentID, "نص ما")
	h.send(studentID, btnCancelAction)

	log, err := h.stores.Complaints.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, log.Len())
}

// ── Admin console ───────────────────────────────────────────────────────

func TestOwnerAddsSubject(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "55555", "Owner Account")
	h.login(t, ownerID, "55555")

	h.send(ownerID, btnAddSubject)
	h.send(ownerID, "Physiology")

	cat, err := h.stores.Catalog.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Physiology"}, cat.SubjectNames())
	assert.True(t, h.api.sawText("✅ تم إضافة المادة: Physiology"))
}

func TestCapabilityRevokedMidWorkflow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedStudent(t, "12345", "Admin Account")
	require.NoError(t, h.stores.Admins.Add(ctx, adminID))
	_, err := h.stores.Admins.Toggle(ctx, adminID, identity.CapContent)
	require.NoError(t, err)

	h.login(t, adminID, "12345")
	h.send(adminID, btnAddSubject)
	require.Equal(t, session.MenuAddSubject, h.session(adminID).Menu)

	// Revoke the grant between the prompt and the answer.
	_, err = h.stores.Admins.Toggle(ctx, adminID, identity.CapContent)
	require.NoError(t, err)

	h.send(adminID, "Physiology")

	assert.Equal(t, "❌ ليس لديك صلاحية إدارة المحتوى.", h.api.lastText())
	cat, loadErr := h.stores.Catalog.Load()
	require.NoError(t, loadErr)
	assert.Empty(t, cat.SubjectNames())
}

func TestNonAdminCannotReachConsole(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "12345", "Ali Hassan")
	h.login(t, studentID, "12345")

	h.send(studentID, btnAddSubject)

	cat, err := h.stores.Catalog.Load()
	require.NoError(t, err)
	assert.Empty(t, cat.SubjectNames())
	assert.Equal(t, "من فضلك اختر من القوائم المتاحة أو استخدم أزرار التنقل.", h.api.lastText())
}

func TestDeleteSubjectConfirmAndCancel(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "55555", "Owner Account")
	h.seedCatalog(t)
	h.login(t, ownerID, "55555")

	// Cancel leaves the catalog intact.
	h.send(ownerID, btnDeleteMenu)
	h.send(ownerID, btnDeleteSubject)
	h.send(ownerID, "Anatomy")
	h.send(ownerID, btnCancelAction)
	cat, err := h.stores.Catalog.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Anatomy"}, cat.SubjectNames())

	// Confirm removes it.
	h.send(ownerID, btnDeleteMenu)
	h.send(ownerID, btnDeleteSubject)
	h.send(ownerID, "Anatomy")
	h.send(ownerID, btnConfirmDel)
	cat, err = h.stores.Catalog.Load()
	require.NoError(t, err)
	assert.Empty(t, cat.SubjectNames())
	assert.True(t, h.api.sawText("✅ تم الحذف."))
}

func TestAddStudentFlow(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "55555", "Owner Account")
	h.login(t, ownerID, "55555")

	h.send(ownerID, btnAddStudent)
	h.send(ownerID, "67890")
	h.send(ownerID, "Mona Said")

	dir, err := h.stores.Enrollment.Load()
	require.NoError(t, err)
	rec, err := dir.Find("67890")
	require.NoError(t, err)
	assert.Equal(t, "Mona Said", rec.Name)
}

func TestAddStudentRejectsDuplicateCode(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "55555", "Owner Account")
	h.seedStudent(t, "67890", "Mona Said")
	h.login(t, ownerID, "55555")

	h.send(ownerID, btnAddStudent)
	h.send(ownerID, "67890")

	assert.Equal(t, "❌ هذا الكود موجود بالفعل.", h.api.lastText())
	assert.Equal(t, session.MenuAddStudentCode, h.session(ownerID).Menu)
}

func TestSuspendAndUnsuspendStudent(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "55555", "Owner Account")
	h.seedStudent(t, "67890", "Mona Said")
	h.login(t, ownerID, "55555")

	h.send(ownerID, btnSuspendStudent)
	h.send(ownerID, btnSelectByCode)
	h.send(ownerID, "67890")
	h.send(ownerID, "سلوك غير لائق")

	set, err := h.stores.Suspensions.Load()
	require.NoError(t, err)
	susp, ok := set.Get("67890")
	require.True(t, ok)
	assert.Equal(t, "سلوك غير لائق", susp.Reason)

	// Picking the same student again offers the lift.
	h.send(ownerID, btnSuspendStudent)
	h.send(ownerID, btnSelectByCode)
	h.send(ownerID, "67890")
	h.send(ownerID, btnUnsuspend)

	set, err = h.stores.Suspensions.Load()
	require.NoError(t, err)
	_, ok = set.Get("67890")
	assert.False(t, ok)
}

func TestImportCSV(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "55555", "Owner Account")
	h.login(t, ownerID, "55555")
	h.api.fileData = []byte("code,name\n11111,Ahmed\n22222,Sara\n")

	h.send(ownerID, btnImportCodes)
	h.sendMsg(ownerID, &telegram.Message{
		Document: &telegram.Document{FileID: "CSV1", FileName: "codes.csv"},
	})

	dir, err := h.stores.Enrollment.Load()
	require.NoError(t, err)
	_, err = dir.Find("11111")
	assert.NoError(t, err)
	_, err = dir.Find("22222")
	assert.NoError(t, err)
}

func TestImportRejectsNonCSV(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "55555", "Owner Account")
	h.login(t, ownerID, "55555")

	h.send(ownerID, btnImportCodes)
	h.sendMsg(ownerID, &telegram.Message{
		Document: &telegram.Document{FileID: "X", FileName: "codes.xlsx"},
	})

	assert.Equal(t, "❌ يرجى رفع ملف CSV صحيح.", h.api.lastText())
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "55555", "Owner Account")
	h.seedCatalog(t)
	h.login(t, ownerID, "55555")

	h.send(ownerID, btnAddFile)
	h.send(ownerID, "Anatomy")
	h.send(ownerID, "Lecture 1")
	h.sendMsg(ownerID, &telegram.Message{
		Document: &telegram.Document{FileID: "EXE1", FileName: "virus.exe"},
	})

	assert.Equal(t, "❌ نوع الملف أو حجمه غير مسموح. الأنواع: PDF/PPT/صوت/فيديو.", h.api.lastText())
	cat, err := h.stores.Catalog.Load()
	require.NoError(t, err)
	files, err := cat.FileNames("Anatomy", "Lecture 1")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes.pdf"}, files)
}

func TestUploadStoresFileReference(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "55555", "Owner Account")
	h.seedCatalog(t)
	h.login(t, ownerID, "55555")

	h.send(ownerID, btnAddFile)
	h.send(ownerID, "Anatomy")
	h.send(ownerID, "Lecture 1")
	h.sendMsg(ownerID, &telegram.Message{
		Document: &telegram.Document{FileID: "PDF9", FileName: "slides.pdf", FileSize: 1024},
	})

	cat, err := h.stores.Catalog.Load()
	require.NoError(t, err)
	entry, err := cat.File("Anatomy", "Lecture 1", "slides.pdf")
	require.NoError(t, err)
	assert.Equal(t, "PDF9", entry.FileID)
}

func TestOwnerManagesAdmins(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "55555", "Owner Account")
	h.login(t, ownerID, "55555")

	h.send(ownerID, btnManageAdmins)
	h.send(ownerID, btnAddAdmin)
	h.send(ownerID, btnAddByID)
	h.send(ownerID, "3000")

	assert.True(t, h.stores.Admins.IsAdmin(adminID))
	for _, c := range identity.AllCapabilities {
		assert.False(t, h.stores.Admins.HasCapability(adminID, c), string(c))
	}
}

func TestBroadcastTextFansOutToSeenUsers(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "55555", "Owner Account")
	require.NoError(t, h.stores.Seen.Add(4001))
	require.NoError(t, h.stores.Seen.Add(4002))
	h.login(t, ownerID, "55555")

	before := len(h.api.texts)
	h.send(ownerID, btnBroadcast)
	h.send(ownerID, "امتحان الغد مؤجل")
	h.send(ownerID, btnConfirmSend)

	sent := 0
	for _, txt := range h.api.texts[before:] {
		if txt == "امتحان الغد مؤجل" {
			sent++
		}
	}
	assert.Equal(t, 2, sent)
	assert.True(t, h.api.sawText("✅ تم الإرسال إلى 2 مستخدم. أخفق 0."))
}

func TestMyDataPlaceholders(t *testing.T) {
	h := newHarness(t)
	h.seedStudent(t, "12345", "Ali Hassan")
	h.login(t, studentID, "12345")

	h.send(studentID, btnMyData)
	h.send(studentID, btnSchedule)

	assert.Equal(t, "❗ لم يتم إضافة هذه الميزة بعد", h.api.lastText())
}
