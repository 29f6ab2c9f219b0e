package repository

// Repositories agrupa los repositorios atados a una misma transacción.
// Lo construye el TxRunner de infraestructura y lo reciben los servicios de aplicación.
type Repositories interface {
	Products() ProductRepository
	Customers() CustomerRepository
	Balances() StockBalanceRepository
	LocationBalances() LocationBalanceRepository
	Lots() LotRepository
	Movements() StockMovementRepository
	Alerts() StockAlertRepository
	Transfers() TransferRepository
	OperationalExits() OperationalExitRepository
	Orders() OrderRepository
	OrderEvents() OrderEventRepository
	OrderMovements() OrderStockMovementRepository
	Receivables() ReceivableRepository
	Documents() BillingDocumentRepository
}
