package mocks

//go:generate mockery --name WarehouseStore --srcpkg github.com/ridemart-lab/ridemart/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
