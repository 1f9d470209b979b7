package partner

import (
	"strings"
	"time"
)

// Partner is a store's application to join the marketplace. Applications are
// write-once.
type Partner struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	StoreDetails string    `json:"storeDetails"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Input struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	StoreDetails string `json:"storeDetails"`
}

func (in Input) Validate() map[string]string {
	errs := map[string]string{}
	required := map[string]string{
		"name":         in.Name,
		"email":        in.Email,
		"phone":        in.Phone,
		"storeDetails": in.StoreDetails,
	}
	for field, v := range required {
		if strings.TrimSpace(v) == "" {
			errs[field] = field + " is required"
		}
	}
	return errs
}
