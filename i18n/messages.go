package i18n

type entry struct {
	he string
	en string
}

// messages is keyed by error codes, recommendation keys and notification kinds.
var messages = map[string]entry{
	// auth
	"email-already-in-use": {"כתובת האימייל כבר רשומה במערכת", "This email is already registered"},
	"invalid-email":        {"כתובת אימייל לא תקינה", "Invalid email address"},
	"weak-password":        {"הסיסמה חלשה מדי (לפחות 8 תווים, אות וספרה)", "Password is too weak (at least 8 characters, a letter and a digit)"},
	"invalid-credentials":  {"אימייל או סיסמה שגויים", "Wrong email or password"},
	"too-many-requests":    {"יותר מדי ניסיונות, נסו שוב מאוחר יותר", "Too many attempts, please try again later"},
	"invalid-token":        {"הקישור אינו תקף או שפג תוקפו", "The link is invalid or has expired"},
	"unauthenticated":      {"יש להתחבר כדי להמשיך", "Please sign in to continue"},
	"forbidden":            {"אין לך הרשאה לבצע פעולה זו", "You are not allowed to do that"},
	"invalid-role":         {"סוג משתמש לא תקין", "Invalid account type"},

	// generic
	"not-found":        {"הפריט המבוקש לא נמצא", "The requested item was not found"},
	"validation":       {"חלק מהשדות חסרים או שגויים", "Some fields are missing or invalid"},
	"invalid-json":     {"בקשה לא תקינה", "Malformed request"},
	"internal":         {"אירעה שגיאה, נסו שוב", "Something went wrong, please try again"},
	"storage":          {"העלאת הקובץ נכשלה", "File upload failed"},
	"file-required":    {"יש לצרף קובץ וידאו", "A video file is required"},
	"file-too-large":   {"הקובץ גדול מדי", "The file is too large"},
	"unsupported-file": {"סוג הקובץ אינו נתמך", "Unsupported file type"},

	// domain
	"invalid-category":        {"קטגוריה לא קיימת", "Unknown category"},
	"invalid-score":           {"הציון חייב להיות בין 0 ל-10", "Score must be between 0 and 10"},
	"challenge-locked":        {"האתגר עדיין נעול ברמה שלך", "This challenge is still locked at your level"},
	"assessment-closed":       {"מבחן הרמה כבר הושלם", "The assessment is already completed"},
	"invalid-exercise":        {"התרגיל אינו חלק ממבחן הרמה", "This exercise is not part of the assessment"},
	"already-reviewed":        {"הפריט כבר נבדק", "This item was already reviewed"},
	"not-a-player":            {"המשתמש אינו שחקן", "The user is not a player"},
	"category-in-use":         {"הקטגוריה בשימוש ואי אפשר למחוק אותה", "The category is in use and cannot be deleted"},
	"duplicate-category":      {"קטגוריה עם שם זה כבר קיימת", "A category with this name already exists"},
	"upload-progress-unknown": {"לא נמצאה העלאה פעילה", "No active upload found"},

	// recommendations
	"complete_profile":    {"השלימו את הפרופיל שלכם כדי שסקאוטים ימצאו אתכם", "Complete your profile so scouts can find you"},
	"add_profile_photo":   {"הוסיפו תמונת פרופיל", "Add a profile photo"},
	"set_position":        {"בחרו את העמדה שלכם במגרש", "Choose your playing position"},
	"complete_assessment": {"בצעו את מבחן הרמה כדי לקבל רמת פתיחה", "Take the assessment to get your starting level"},
	"upload_first_video":  {"העלו את סרטון המיומנות הראשון שלכם", "Upload your first skills video"},
	"try_challenge":       {"נסו אתגר חדש השבוע", "Try a new challenge this week"},
	"browse_players":      {"גלו שחקנים והוסיפו אותם לרשימת המעקב", "Browse players and add them to your watchlist"},

	// notifications
	"video_approved":       {"הסרטון \"%s\" אושר", "Your video \"%s\" was approved"},
	"video_rejected":       {"הסרטון \"%s\" נדחה: %s", "Your video \"%s\" was rejected: %s"},
	"video_recategorized":  {"הקטגוריות של הסרטון \"%s\" עודכנו", "The categories of your video \"%s\" were updated"},
	"submission_approved":  {"ההגשה לאתגר \"%s\" אושרה, ציון %.1f", "Your submission for \"%s\" was approved with score %.1f"},
	"submission_rejected":  {"ההגשה לאתגר \"%s\" נדחתה: %s", "Your submission for \"%s\" was rejected: %s"},
	"assessment_completed": {"מבחן הרמה הושלם! רמת הפתיחה שלך: %d", "Assessment complete! Your starting level: %d"},
	"level_up":             {"כל הכבוד! עלית לרמה %d", "Well done! You reached level %d"},
	"badge_awarded":        {"קיבלת תג חדש: %s", "You earned a new badge: %s"},
}
