package session

// Menu tags every screen of the conversational interface. The set is
// closed: the renderer switches exhaustively over it and unknown tags
// fall back to the main menu.
type Menu string

const (
	MenuMain Menu = "main"

	// Student self-service
	MenuMyData         Menu = "my_data"
	MenuViewSubjects   Menu = "view_subjects"
	MenuViewLectures   Menu = "view_lectures"
	MenuViewFiles      Menu = "view_files"
	MenuSuggestText    Menu = "user_suggest_text"
	MenuSuggestConfirm Menu = "user_suggest_confirm"

	// Admin console root
	MenuAdminPanel Menu = "admin_panel"

	// Admin management (owner only)
	MenuManageAdmins         Menu = "manage_admins"
	MenuListAdmins           Menu = "list_admins"
	MenuAddAdminMethod       Menu = "add_admin_method"
	MenuAddAdminByID         Menu = "add_admin_id"
	MenuAddAdminByUsername   Menu = "add_admin_username"
	MenuAddAdminByContact    Menu = "add_admin_contact"
	MenuEditAdminPermsSelect Menu = "edit_admin_perms_select"
	MenuEditAdminPerms       Menu = "edit_admin_perms"
	MenuDeleteAdminSelect    Menu = "delete_admin_select"
	MenuDeleteAdminConfirm   Menu = "delete_admin_confirm"

	// Content management
	MenuContentRename Menu = "admin_rename_menu"
	MenuContentDelete Menu = "admin_delete_menu"

	MenuAddSubject        Menu = "add_subject"
	MenuAddLectureSubject Menu = "add_lecture_subject"
	MenuAddLectureName    Menu = "add_lecture_name"
	MenuAddFileSubject    Menu = "add_item_subject"
	MenuAddFileLecture    Menu = "add_item_lecture"
	MenuAddFileUpload     Menu = "add_item_file"

	MenuRenameSubjectSelect  Menu = "rename_subject_select"
	MenuRenameSubjectNewName Menu = "rename_subject_newname"
	MenuRenameLectureSubject Menu = "rename_lecture_select_subject"
	MenuRenameLectureSelect  Menu = "rename_lecture_select_lecture"
	MenuRenameLectureNewName Menu = "rename_lecture_newname"
	MenuRenameFileSubject    Menu = "rename_file_select_subject"
	MenuRenameFileLecture    Menu = "rename_file_select_lecture"
	MenuRenameFileSelect     Menu = "rename_file_select_file"
	MenuRenameFileNewName    Menu = "rename_file_newname"

	MenuDeleteSubjectSelect  Menu = "delete_subject_select"
	MenuDeleteSubjectConfirm Menu = "delete_subject_confirm"
	MenuDeleteLectureSubject Menu = "delete_lecture_select_subject"
	MenuDeleteLectureSelect  Menu = "delete_lecture_select_lecture"
	MenuDeleteLectureConfirm Menu = "delete_lecture_confirm"
	MenuDeleteFileSubject    Menu = "delete_file_select_subject"
	MenuDeleteFileLecture    Menu = "delete_file_select_lecture"
	MenuDeleteFileSelect     Menu = "delete_file_select_file"
	MenuDeleteFileConfirm    Menu = "delete_file_confirm"

	// Student management
	MenuAddStudentCode Menu = "admin_add_student_code"
	MenuAddStudentName Menu = "admin_add_student_name"

	MenuDeleteStudentMethod  Menu = "admin_delete_student_method"
	MenuDeleteStudentCode    Menu = "admin_delete_student_enter_code"
	MenuDeleteStudentList    Menu = "delete_student_list"
	MenuDeleteStudentConfirm Menu = "admin_delete_student_confirm"

	MenuEditStudentMethod  Menu = "admin_edit_student_method"
	MenuEditStudentCode    Menu = "admin_edit_student_enter_code"
	MenuEditStudentList    Menu = "edit_student_list"
	MenuEditStudentField   Menu = "admin_edit_student_choose_field"
	MenuEditStudentNewName Menu = "admin_edit_student_new_name"
	MenuEditStudentNewCode Menu = "admin_edit_student_new_code"

	MenuSuspendMethod    Menu = "admin_suspend_method"
	MenuSuspendCode      Menu = "admin_suspend_enter_code"
	MenuSuspendList      Menu = "suspend_student_list"
	MenuSuspendReason    Menu = "admin_suspend_reason"
	MenuUnsuspendConfirm Menu = "admin_unsuspend_confirm"

	// Bulk import
	MenuImportWaitFile Menu = "import_codes_wait_file"

	// Broadcast
	MenuBroadcastPrompt  Menu = "admin_broadcast_prompt"
	MenuBroadcastConfirm Menu = "admin_broadcast_confirm"

	// Complaints
	MenuComplaintsList Menu = "admin_complaints_list"
)
