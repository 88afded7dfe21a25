package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"superPayroll/internal/storage"
)

// listQueryParams holds the paging and filter parameters of list endpoints.
// where is a JSON object in the dashboard's filter syntax, e.g.
// {"or":[{"sender":"0x.."},{"receiver":"0x.."}]}.
type listQueryParams struct {
	Where          string `form:"where"`
	OrderBy        string `form:"orderBy"`
	OrderDirection string `form:"orderDirection"`
	Skip           int    `form:"skip,default=0"`
	First          int    `form:"first,default=100"`
}

func parseListQuery(c *gin.Context, entity storage.Entity) (storage.Query, error) {
	var params listQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return storage.Query{}, fmt.Errorf("invalid query parameters: %w", err)
	}

	q := storage.Query{
		OrderBy:        params.OrderBy,
		OrderDirection: params.OrderDirection,
		Skip:           params.Skip,
		First:          params.First,
	}

	if params.Where != "" {
		dec := json.NewDecoder(bytes.NewReader([]byte(params.Where)))
		dec.UseNumber()

		var where map[string]interface{}
		if err := dec.Decode(&where); err != nil {
			return storage.Query{}, fmt.Errorf("invalid where: %w", err)
		}
		if entity.Name == storage.StreamEntity.Name {
			translated, err := translateMonthlyFlowRate(where)
			if err != nil {
				return storage.Query{}, fmt.Errorf("invalid where: %w", err)
			}
			where = translated
		}
		pred, err := storage.ParseWhere(entity, where)
		if err != nil {
			return storage.Query{}, err
		}
		q.Where = pred
	}

	return q.Normalize(entity)
}
