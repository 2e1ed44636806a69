package handlers

import (
	"net/http"

	"certcycle/internal/catalog"
	"certcycle/internal/database"

	"github.com/gin-gonic/gin"
)

func ListStandards(c *gin.Context) {
	cat := catalog.New(database.DB)
	standards, err := cat.ListStandards()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": standards})
}

func ListIAFEACCodes(c *gin.Context) {
	cat := catalog.New(database.DB)
	codes, err := cat.ListCodes()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": codes})
}
