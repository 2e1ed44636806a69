package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func paramID(c *gin.Context, name string) (uint, bool) {
	idStr := c.Param(name)
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći ID"})
		return 0, false
	}
	return uint(id), true
}

// parseEventDate принимает "YYYY-MM-DD" или полный ISO-8601 со смещением;
// у таймстемпов авторитетен компонент даты в локальной зоне сервера.
func parseEventDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(time.Local), nil
}

func respondError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "nije pronađeno"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "interna greška"})
}
