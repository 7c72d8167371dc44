package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ZaguanLabs/polyglot"
	"github.com/ZaguanLabs/polyglot/history"
)

// ClientIDHeader carries the id that namespaces a browser's history.
const ClientIDHeader = "X-Client-ID"

const clientIDKey = "clientID"

// clientID resolves the caller's client id, issuing a new one when the
// request has none. The id is echoed in the response header.
func (s *Server) clientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(ClientIDHeader)
		if id == "" {
			id = uuid.NewString()
		} else if parsed, err := uuid.Parse(id); err == nil {
			id = parsed.String()
		} else {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid client id"})
			return
		}

		c.Set(clientIDKey, id)
		c.Header(ClientIDHeader, id)
		c.Next()
	}
}

// viewHistory runs fn against the caller's history without modifying it.
func (s *Server) viewHistory(c *gin.Context, fn func(*history.Store) error) error {
	return s.histories.View(c.Request.Context(), c.GetString(clientIDKey), fn)
}

// updateHistory runs fn against the caller's history.
func (s *Server) updateHistory(c *gin.Context, fn func(*history.Store) error) error {
	return s.histories.Update(c.Request.Context(), c.GetString(clientIDKey), fn)
}

func (s *Server) handleHistoryList(c *gin.Context) {
	var entries []polyglot.TranslationRecord
	err := s.viewHistory(c, func(st *history.Store) error {
		entries = st.Entries()
		return nil
	})
	if err != nil {
		respondError(c, "History unavailable", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleHistoryAppend(c *gin.Context) {
	var rec polyglot.TranslationRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid history record"})
		return
	}
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().UTC().Format(polyglot.TimestampLayout)
	}

	err := s.updateHistory(c, func(st *history.Store) error {
		return st.Append(c.Request.Context(), rec)
	})
	if err != nil {
		respondError(c, "Failed to save history", err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleHistoryClear(c *gin.Context) {
	err := s.updateHistory(c, func(st *history.Store) error {
		return st.Clear(c.Request.Context())
	})
	if err != nil {
		respondError(c, "Failed to clear history", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleHistoryRemove(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid history index"})
		return
	}

	var removed bool
	err = s.updateHistory(c, func(st *history.Store) error {
		var err error
		removed, err = st.Remove(c.Request.Context(), index)
		return err
	})
	if err != nil {
		respondError(c, "Failed to remove history entry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (s *Server) handleHistoryRestore(c *gin.Context) {
	var rec polyglot.TranslationRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid history record"})
		return
	}

	var restored polyglot.TranslationRecord
	err := s.updateHistory(c, func(st *history.Store) error {
		var err error
		restored, err = st.Restore(c.Request.Context(), rec)
		return err
	})
	if err != nil {
		respondError(c, "Failed to restore history entry", err)
		return
	}
	c.JSON(http.StatusOK, restored)
}

func (s *Server) handleHistoryStats(c *gin.Context) {
	var entries []polyglot.TranslationRecord
	err := s.viewHistory(c, func(st *history.Store) error {
		entries = st.Entries()
		return nil
	})
	if err != nil {
		respondError(c, "History unavailable", err)
		return
	}
	c.JSON(http.StatusOK, s.deriver.Derive(entries))
}
