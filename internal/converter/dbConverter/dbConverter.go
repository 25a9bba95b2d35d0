package dbConverter

import (
	"github.com/KotFed0t/stock_analyser/internal/model"
	"github.com/KotFed0t/stock_analyser/internal/model/dbModel"
)

func ConvertPortfolioLine(dbLine dbModel.PortfolioLine) model.PortfolioLine {
	return model.PortfolioLine{
		Symbol:   dbLine.Symbol,
		Quantity: dbLine.Quantity,
		BuyPrice: dbLine.BuyPrice,
	}
}
