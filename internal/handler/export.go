package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/chinhnt-ps/portfolio-be/internal/models"
	"github.com/chinhnt-ps/portfolio-be/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler streams the transaction log as CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeaders = []string{"Type", "Amount", "Currency", "Date", "Account", "Category", "Note"}

func (h *ExportHandler) load(c *gin.Context, userID uint) ([]models.Transaction, map[uint]string, map[uint]string, bool) {
	var txs []models.Transaction
	if err := h.DB.Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return nil, nil, nil, false
	}

	accounts := make(map[uint]string)
	var accts []models.Account
	if err := h.DB.Where("user_id = ?", userID).Find(&accts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return nil, nil, nil, false
	}
	for i := range accts {
		accounts[accts[i].ID] = accts[i].Name
	}

	categories := make(map[uint]string)
	var cats []models.Category
	if err := h.DB.Where("user_id = ?", userID).Find(&cats).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return nil, nil, nil, false
	}
	for i := range cats {
		categories[cats[i].ID] = cats[i].Name
	}
	return txs, accounts, categories, true
}

func exportRow(t *models.Transaction, accounts, categories map[uint]string) []string {
	account := ""
	if t.AccountID != nil {
		account = accounts[*t.AccountID]
	} else if t.FromAccountID != nil && t.ToAccountID != nil {
		account = accounts[*t.FromAccountID] + " -> " + accounts[*t.ToAccountID]
	}
	category := ""
	if t.CategoryID != nil {
		category = categories[*t.CategoryID]
	}
	return []string{
		string(t.Type),
		t.Amount.String(),
		t.Currency,
		t.OccurredAt.Format("2006-01-02"),
		account,
		category,
		t.Note,
	}
}

// ExportCSV writes the full transaction log as a CSV attachment.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	txs, accounts, categories, ok := h.load(c, user.ID)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// UTF-8 BOM so spreadsheet apps detect the encoding
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer.Write(exportHeaders)
	for i := range txs {
		writer.Write(exportRow(&txs[i], accounts, categories))
	}
}

// ExportXLSX writes the full transaction log as an XLSX attachment.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	txs, accounts, categories, ok := h.load(c, user.ID)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create sheet failed")
		return
	}
	f.SetActiveSheet(index)

	for i, head := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, head)
	}

	for idx := range txs {
		row := idx + 2
		for col, val := range exportRow(&txs[idx], accounts, categories) {
			f.SetCellValue(sheetName, fmt.Sprintf("%c%d", 'A'+col, row), val)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 22)
	f.SetColWidth(sheetName, "B", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "F", 18)
	f.SetColWidth(sheetName, "G", "G", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
