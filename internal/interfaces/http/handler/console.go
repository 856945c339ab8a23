package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/webstack/backend/internal/infrastructure/persistence"
)

// ConsoleHandler serves a read-only view of the relational schema
type ConsoleHandler struct {
	BaseHandler
	database  *persistence.Database
	inspector *persistence.SchemaInspector
}

// NewConsoleHandler creates a new ConsoleHandler
func NewConsoleHandler(database *persistence.Database, inspector *persistence.SchemaInspector) *ConsoleHandler {
	return &ConsoleHandler{database: database, inspector: inspector}
}

// ConsoleResponse lists the tables of the relational store
type ConsoleResponse struct {
	Driver string                         `json:"driver"`
	Pool   persistence.ConnectionStats    `json:"pool"`
	Tables []persistence.TableDescription `json:"tables"`
}

// Overview lists every table with its columns and foreign keys.
// GET /h2
func (h *ConsoleHandler) Overview(c *gin.Context) {
	tables, err := h.inspector.DescribeAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	stats, err := h.database.Stats()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ConsoleResponse{Driver: h.database.Driver, Pool: stats, Tables: tables})
}

// Table describes one table. An unknown table is a 404.
// GET /h2/tables/:name
func (h *ConsoleHandler) Table(c *gin.Context) {
	table, err := h.inspector.Describe(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, table)
}
