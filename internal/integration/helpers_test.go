package integration

import (
	"strconv"

	"github.com/fairyhunter13/product-console/internal/model"
)

func mockCred() model.Credentials {
	return model.Credentials{Username: "admin", Password: "admin"}
}

func productN(i int) model.Product {
	return model.Product{Name: "p" + strconv.Itoa(i), Price: float64(i), Stock: int64(i)}
}
