package model

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

type Session struct {
	Username string
	Theme    string
}
