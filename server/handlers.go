package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZaguanLabs/polyglot"
)

type translateRequest struct {
	Text string `json:"text"`
	From string `json:"from"`
	To   string `json:"to"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	From           string `json:"from"`
	To             string `json:"to"`
	Direction      string `json:"direction"`
	Cached         bool   `json:"cached"`
}

type detectRequest struct {
	Text string `json:"text"`
}

type languageEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
	RTL  bool   `json:"rtl"`
}

func (s *Server) handleTranslate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" || req.To == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required parameters"})
		return
	}

	res, err := s.translator.Translate(c.Request.Context(), polyglot.TranslateRequest{
		Text:       req.Text,
		SourceLang: req.From,
		TargetLang: req.To,
	})
	if err != nil {
		respondError(c, "Translation failed", err)
		return
	}

	c.JSON(http.StatusOK, translateResponse{
		TranslatedText: res.TranslatedText,
		From:           res.SourceLang,
		To:             res.TargetLang,
		Direction:      res.Direction,
		Cached:         res.Cached,
	})
}

func (s *Server) handleDetectLanguage(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing text parameter"})
		return
	}

	code, err := s.translator.DetectLanguage(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, "Language detection failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": code})
}

func (s *Server) handleStats(c *gin.Context) {
	usage := s.translator.Usage()
	if usage == nil {
		c.JSON(http.StatusOK, polyglot.NewUsageCounter().Snapshot())
		return
	}
	c.JSON(http.StatusOK, usage.Snapshot())
}

func (s *Server) handleLanguages(c *gin.Context) {
	out := make([]languageEntry, 0, len(polyglot.Languages)+1)
	out = append(out, languageEntry{Code: polyglot.AutoDetect, Name: polyglot.AutoDetectLabel})
	for _, lang := range polyglot.Languages {
		out = append(out, languageEntry{
			Code: lang.Code,
			Name: lang.Name,
			RTL:  polyglot.IsRTL(lang.Code),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   polyglot.FullVersion(),
		"goVersion": polyglot.Info().GoVersion,
	})
}

// respondError maps validation failures to 400 and everything else to 500.
func respondError(c *gin.Context, message string, err error) {
	_ = c.Error(err)

	var valErr *polyglot.ValidationError
	if errors.As(err, &valErr) {
		c.JSON(http.StatusBadRequest, gin.H{"message": valErr.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"message": message,
		"error":   err.Error(),
	})
}
