package mockmall

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// envelope matches the production response wrapper: a string code, an
// optional message and the payload.
type envelope struct {
	Code string      `json:"code"`
	Msg  string      `json:"msg,omitempty"`
	Data interface{} `json:"data"`
}

// ok writes a single-wrapped success payload.
func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Code: "200", Data: data})
}

// okDeep writes a double-wrapped success payload, the shape the checkout and
// pay endpoints are observed to use.
func okDeep(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Code: "200", Data: gin.H{"data": data}})
}

// fail writes an error with matching HTTP status and envelope code.
func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, envelope{Code: strconv.Itoa(status), Msg: msg})
}
