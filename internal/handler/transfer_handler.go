package handler

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// maxImportSize 限制导入内容大小
const maxImportSize = 16 << 20

// ExportFile 以附件形式下载快照
func (a *API) ExportFile(c *gin.Context) {
	var buf bytes.Buffer
	name, err := a.transfer.ExportToFile(&buf)
	if err != nil {
		a.respondServiceError(c, err, "导出失败")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", buf.Bytes())
}

// ExportKey 返回 save key
func (a *API) ExportKey(c *gin.Context) {
	key, err := a.transfer.ExportToKey()
	if err != nil {
		a.respondServiceError(c, err, "导出失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key})
}

// Import 接受上传文件、JSON {"key": ...} 或原始请求体，校验通过后替换全部数据。
func (a *API) Import(c *gin.Context) {
	source, ok := readImportSource(c)
	if !ok {
		return
	}

	result, err := a.transfer.ImportReplaceAll(source)
	a.respondMutation(c, err, gin.H{"state": result.State, "repaired": result.Repaired}, "导入失败")
}

func readImportSource(c *gin.Context) ([]byte, bool) {
	contentType := c.ContentType()

	if strings.HasPrefix(contentType, "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			respondError(c, http.StatusBadRequest, "请选择要导入的文件")
			return nil, false
		}
		if header.Size > maxImportSize {
			respondError(c, http.StatusRequestEntityTooLarge, "导入文件过大")
			return nil, false
		}
		file, err := header.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "无法读取导入文件")
			return nil, false
		}
		defer file.Close()
		raw, err := io.ReadAll(file)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无法读取导入文件")
			return nil, false
		}
		return raw, true
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, "无法读取导入内容")
		return nil, false
	}
	if len(raw) > maxImportSize {
		respondError(c, http.StatusRequestEntityTooLarge, "导入内容过大")
		return nil, false
	}

	// {"key": "..."} 形式的请求体，快照文件本身不含 key 字段
	if key := gjson.GetBytes(raw, "key"); key.Type == gjson.String && !gjson.GetBytes(raw, "schemaTag").Exists() {
		return []byte(key.Str), true
	}
	return raw, true
}
