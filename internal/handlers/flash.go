package handlers

import "github.com/gin-gonic/gin"

const flashCookieName = "flash"

// setFlash stores a one-shot message for the next rendered page.
func setFlash(c *gin.Context, msg string) {
	c.SetCookie(flashCookieName, msg, 60, "/", "", false, true)
}

// takeFlash returns the pending flash message, clearing it.
func takeFlash(c *gin.Context) string {
	msg, err := c.Cookie(flashCookieName)
	if err != nil || msg == "" {
		return ""
	}
	c.SetCookie(flashCookieName, "", -1, "/", "", false, true)
	return msg
}
