package handlers

import (
	"net/http"

	"certcycle/internal/database"
	"certcycle/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "username i password su obavezni"})
		return
	}

	var user models.User
	if err := database.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "pogrešno korisničko ime ili lozinka"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "pogrešno korisničko ime ili lozinka"})
		return
	}

	sess := sessions.Default(c)
	sess.Set("user_id", user.ID)
	sess.Set("role", string(user.Role))
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "session error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	}})
}

func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// кто сделал запрос; 0 если сессии нет
func currentUserID(c *gin.Context) uint {
	sess := sessions.Default(c)
	if v := sess.Get("user_id"); v != nil {
		if uid, ok := v.(uint); ok {
			return uid
		}
	}
	return 0
}
