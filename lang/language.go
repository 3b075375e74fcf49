package lang

import (
	"fmt"
	"sync"
)

type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleChinese Locale = "zh"
)

type LibraryStrings struct {
	Title           string
	Subtitle        string
	Loading         string
	Empty           string
	NoMatches       string
	CountTemplate   string
	LoadFailed      string
	SearchPrompt    string
	SearchHint      string
	Help            string
	SignedInAs      string
	LanguageChanged string
}

type LoginStrings struct {
	SignInTitle    string
	RegisterTitle  string
	Email          string
	Password       string
	FirstName      string
	LastName       string
	SigningIn      string
	Registering    string
	SignInFailed   string
	RegisterFailed string
	MissingFields  string
	Help           string
}

type AddStrings struct {
	Title          string
	Placeholder    string
	Searching      string
	NoResults      string
	FoundTemplate  string
	GenrePrompt    string
	GenreHint      string
	Adding         string
	AddedTemplate  string
	FailedTemplate string
	SearchFailed   string
	Help           string
}

type DetailsStrings struct {
	Author           string
	Genre            string
	Shelf            string
	AgeShelf         string
	Publisher        string
	Year             string
	Pages            string
	ISBN             string
	NoDescription    string
	Recommendations  string
	Loading          string
	InLibrary        string
	AgeTemplate      string
	ReadingLevel     string
	Themes           string
	RecommendFailed  string
	Removing         string
	RemovedTemplate  string
	RemoveFailed     string
	NoRecommendation string
	Help             string
}

type SettingsStrings struct {
	LanguageNames    map[Locale]string
	SaveConfigFailed string
}

type CommonStrings struct {
	UnknownState  string
	UnknownItem   string
	ErrorTemplate string
}

type LayoutStrings struct {
	UnderlineLength int
}

type Strings struct {
	Library  LibraryStrings
	Login    LoginStrings
	Add      AddStrings
	Details  DetailsStrings
	Settings SettingsStrings
	Common   CommonStrings
	Layout   LayoutStrings
}

var (
	mu sync.RWMutex

	translations = map[Locale]*Strings{
		LocaleChinese: {
			Library: LibraryStrings{
				Title:           "我的书架",
				Subtitle:        "查找、扫描、整理",
				Loading:         "书架加载中…",
				Empty:           "书架还是空的，按 a 添加第一本书",
				NoMatches:       "没有符合条件的书",
				CountTemplate:   "共%d本",
				LoadFailed:      "无法加载书架: %v",
				SearchPrompt:    "搜索：",
				SearchHint:      "按书名或作者过滤",
				Help:            "a 添加 • / 搜索 • ←/→ 分类 • enter 详情 • r 刷新 • ctrl+l 语言 • L 退出登录 • q 退出",
				SignedInAs:      "已登录: %s",
				LanguageChanged: "语言已切换为%s",
			},
			Login: LoginStrings{
				SignInTitle:    "登录",
				RegisterTitle:  "注册账号",
				Email:          "邮箱",
				Password:       "密码",
				FirstName:      "名",
				LastName:       "姓",
				SigningIn:      "登录中…",
				Registering:    "注册中…",
				SignInFailed:   "登录失败: %v",
				RegisterFailed: "注册失败: %v",
				MissingFields:  "请填写邮箱和密码",
				Help:           "enter 提交 • tab 切换输入框 • ctrl+r 登录/注册 • esc 退出",
			},
			Add: AddStrings{
				Title:          "添加书籍",
				Placeholder:    "输入 ISBN 或书名…",
				Searching:      "查找中…",
				NoResults:      "没有找到匹配的书籍",
				FoundTemplate:  "找到%d本书籍",
				GenrePrompt:    "分类：",
				GenreHint:      "留空则归入 General",
				Adding:         "添加中…",
				AddedTemplate:  "已将「%s」加入书架",
				FailedTemplate: "添加失败: %v",
				SearchFailed:   "查找失败: %v",
				Help:           "enter 确认 • esc 返回",
			},
			Details: DetailsStrings{
				Author:           "作者",
				Genre:            "类型",
				Shelf:            "书架分类",
				AgeShelf:         "年龄分类",
				Publisher:        "出版社",
				Year:             "出版年份",
				Pages:            "页数",
				ISBN:             "ISBN",
				NoDescription:    "暂无简介",
				Recommendations:  "相似书籍",
				Loading:          "推荐加载中…",
				InLibrary:        "已在书架",
				AgeTemplate:      "适合年龄: %s",
				ReadingLevel:     "阅读难度",
				Themes:           "主题",
				RecommendFailed:  "无法获取推荐: %v",
				Removing:         "删除中…",
				RemovedTemplate:  "已删除「%s」",
				RemoveFailed:     "删除失败: %v",
				NoRecommendation: "没有推荐",
				Help:             "R 推荐 • x 删除 • esc 返回",
			},
			Settings: SettingsStrings{
				LanguageNames: map[Locale]string{
					LocaleChinese: "中文",
					LocaleEnglish: "英文",
				},
				SaveConfigFailed: "无法保存设置: %v",
			},
			Common: CommonStrings{
				UnknownState:  "未知状态",
				UnknownItem:   "未知类型",
				ErrorTemplate: "错误: %v",
			},
			Layout: LayoutStrings{
				UnderlineLength: 48,
			},
		},
		LocaleEnglish: {
			Library: LibraryStrings{
				Title:           "Your Library",
				Subtitle:        "Find, scan, and organize",
				Loading:         "Loading library…",
				Empty:           "Your library is empty. Press a to add a book.",
				NoMatches:       "No books match",
				CountTemplate:   "%d books",
				LoadFailed:      "Could not load library: %v",
				SearchPrompt:    "Search: ",
				SearchHint:      "Filter by title or author",
				Help:            "a add • / search • ←/→ genre • enter details • r reload • ctrl+l language • L log out • q quit",
				SignedInAs:      "Signed in as %s",
				LanguageChanged: "Language set to %s",
			},
			Login: LoginStrings{
				SignInTitle:    "Sign in",
				RegisterTitle:  "Create account",
				Email:          "Email",
				Password:       "Password",
				FirstName:      "First name",
				LastName:       "Last name",
				SigningIn:      "Signing in…",
				Registering:    "Creating account…",
				SignInFailed:   "Sign in failed: %v",
				RegisterFailed: "Registration failed: %v",
				MissingFields:  "Email and password are required",
				Help:           "enter submit • tab next field • ctrl+r sign in/register • esc quit",
			},
			Add: AddStrings{
				Title:          "Add a book",
				Placeholder:    "ISBN or title…",
				Searching:      "Looking up…",
				NoResults:      "No matching books found.",
				FoundTemplate:  "Found %d books",
				GenrePrompt:    "Genre: ",
				GenreHint:      "Leave empty for General",
				Adding:         "Adding…",
				AddedTemplate:  "Added \"%s\" to your library",
				FailedTemplate: "Add failed: %v",
				SearchFailed:   "Search failed: %v",
				Help:           "enter confirm • esc back",
			},
			Details: DetailsStrings{
				Author:           "Author",
				Genre:            "Genre",
				Shelf:            "Shelf",
				AgeShelf:         "Age shelf",
				Publisher:        "Publisher",
				Year:             "Published",
				Pages:            "Pages",
				ISBN:             "ISBN",
				NoDescription:    "No description available.",
				Recommendations:  "Similar books",
				Loading:          "Loading recommendations…",
				InLibrary:        "in library",
				AgeTemplate:      "Recommended age: %s",
				ReadingLevel:     "Reading level",
				Themes:           "Themes",
				RecommendFailed:  "Could not load recommendations: %v",
				Removing:         "Removing…",
				RemovedTemplate:  "Removed \"%s\"",
				RemoveFailed:     "Remove failed: %v",
				NoRecommendation: "No recommendations",
				Help:             "R recommendations • x remove • esc back",
			},
			Settings: SettingsStrings{
				LanguageNames: map[Locale]string{
					LocaleChinese: "Chinese",
					LocaleEnglish: "English",
				},
				SaveConfigFailed: "Failed to save settings: %v",
			},
			Common: CommonStrings{
				UnknownState:  "Unknown state",
				UnknownItem:   "Unknown item",
				ErrorTemplate: "Error: %v",
			},
			Layout: LayoutStrings{
				UnderlineLength: 60,
			},
		},
	}

	availableLocales = []Locale{
		LocaleEnglish,
		LocaleChinese,
	}

	currentLocale = LocaleEnglish
	current       = translations[currentLocale]
)

func AvailableLocales() []Locale {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Locale, len(availableLocales))
	copy(out, availableLocales)
	return out
}

func SetLocale(loc Locale) bool {
	mu.Lock()
	defer mu.Unlock()
	strings, ok := translations[loc]
	if !ok {
		return false
	}
	currentLocale = loc
	current = strings
	return true
}

func CurrentLocale() Locale {
	mu.RLock()
	defer mu.RUnlock()
	return currentLocale
}

// NextLocale cycles through the available locales.
func NextLocale() Locale {
	locales := AvailableLocales()
	cur := CurrentLocale()
	for i, l := range locales {
		if l == cur {
			return locales[(i+1)%len(locales)]
		}
	}
	return locales[0]
}

func Active() *Strings {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func LanguageName(loc Locale) string {
	s := Active()
	if name, ok := s.Settings.LanguageNames[loc]; ok {
		return name
	}
	return string(loc)
}

func BookCount(n int) string {
	return fmt.Sprintf(Active().Library.CountTemplate, n)
}

func LoadFailed(err error) string {
	return fmt.Sprintf(Active().Library.LoadFailed, err)
}

func SignedInAs(name string) string {
	return fmt.Sprintf(Active().Library.SignedInAs, name)
}

func LanguageChanged(loc Locale) string {
	return fmt.Sprintf(Active().Library.LanguageChanged, LanguageName(loc))
}

func SignInFailed(err error) string {
	return fmt.Sprintf(Active().Login.SignInFailed, err)
}

func RegisterFailed(err error) string {
	return fmt.Sprintf(Active().Login.RegisterFailed, err)
}

func SearchFound(count int) string {
	return fmt.Sprintf(Active().Add.FoundTemplate, count)
}

func SearchFailed(err error) string {
	return fmt.Sprintf(Active().Add.SearchFailed, err)
}

func Added(title string) string {
	return fmt.Sprintf(Active().Add.AddedTemplate, title)
}

func AddFailed(err error) string {
	return fmt.Sprintf(Active().Add.FailedTemplate, err)
}

func Removed(title string) string {
	return fmt.Sprintf(Active().Details.RemovedTemplate, title)
}

func RemoveFailed(err error) string {
	return fmt.Sprintf(Active().Details.RemoveFailed, err)
}

func RecommendFailed(err error) string {
	return fmt.Sprintf(Active().Details.RecommendFailed, err)
}

func AgeRecommendation(age string) string {
	return fmt.Sprintf(Active().Details.AgeTemplate, age)
}

func SaveConfigFailed(err error) string {
	return fmt.Sprintf(Active().Settings.SaveConfigFailed, err)
}

func Error(err error) string {
	return fmt.Sprintf(Active().Common.ErrorTemplate, err)
}
