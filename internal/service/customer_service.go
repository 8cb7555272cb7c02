package service

import (
	"context"
	"strconv"

	"sgp-service/internal/apperr"
	"sgp-service/internal/models"
	"sgp-service/internal/util"

	"go.uber.org/zap"
)

// CustomerRepository is the persistence surface customer CRUD needs.
type CustomerRepository interface {
	NextCustomerID(ctx context.Context) (int64, error)
	InsertCustomer(ctx context.Context, c *models.Customer) error
	GetCustomer(ctx context.Context, key models.CustomerKey) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, key models.CustomerKey, c *models.Customer) error
	DeleteCustomer(ctx context.Context, key models.CustomerKey) error
	ListCustomers(ctx context.Context) ([]models.CustomerListing, error)
	CountCustomers(ctx context.Context) (int64, error)
}

// CustomerService handles customer registration and maintenance.
type CustomerService struct {
	repo             CustomerRepository
	cache            CatalogCache
	defaultCompanyID int64
	logger           *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(repo CustomerRepository, cache CatalogCache, defaultCompanyID int64) *CustomerService {
	return &CustomerService{
		repo:             repo,
		cache:            cache,
		defaultCompanyID: defaultCompanyID,
		logger:           util.GetLogger(),
	}
}

// RegisterCustomerRequest carries the registration fields. Document and
// phone may arrive with formatting punctuation; it is stripped here.
type RegisterCustomerRequest struct {
	Name           string `json:"name" binding:"required"`
	ShortName      string `json:"short_name"`
	Document       string `json:"document" binding:"required"`
	Phone          string `json:"phone" binding:"required"`
	Address        string `json:"address" binding:"required"`
	CustomerTypeID string `json:"customer_type_id" binding:"required"`
}

// UpdateCustomerRequest carries the mutable customer fields.
type UpdateCustomerRequest struct {
	Name           string `json:"name" binding:"required"`
	ShortName      string `json:"short_name"`
	Document       string `json:"document" binding:"required"`
	Phone          string `json:"phone" binding:"required"`
	Address        string `json:"address" binding:"required"`
	CustomerTypeID string `json:"customer_type_id" binding:"required"`
	Actor          string `json:"-"`
}

func parseCustomerType(raw string) (int64, error) {
	typeID, err := models.ParseID(raw)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindValidation, err, "invalid customer type")
	}
	if typeID != models.CustomerTypeIndividual && typeID != models.CustomerTypeOrganization {
		return 0, apperr.New(apperr.KindValidation, "unknown customer type %d", typeID)
	}
	return typeID, nil
}

// parseDocument strips formatting punctuation and enforces the exact
// digit count for the declared customer type: 11 for an individual,
// 14 for an organization.
func parseDocument(raw string, typeID int64) (int64, error) {
	digits := models.StripDigits(raw)
	want := models.DocumentDigitsIndividual
	if typeID == models.CustomerTypeOrganization {
		want = models.DocumentDigitsOrganization
	}
	if len(digits) != want {
		return 0, apperr.New(apperr.KindValidation,
			"document must have exactly %d digits for this customer type, got %d", want, len(digits))
	}
	doc, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindValidation, err, "invalid document")
	}
	return doc, nil
}

func parsePhone(raw string) (int64, error) {
	digits := models.StripDigits(raw)
	if digits == "" {
		return 0, apperr.New(apperr.KindValidation, "phone must contain digits")
	}
	phone, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindValidation, err, "invalid phone")
	}
	return phone, nil
}

// Register validates and persists a new customer under a fresh identity.
func (s *CustomerService) Register(ctx context.Context, req *RegisterCustomerRequest, actor string) (*models.Customer, error) {
	ctx, span := util.StartSpan(ctx, "CustomerService.Register")
	defer span.End()

	typeID, err := parseCustomerType(req.CustomerTypeID)
	if err != nil {
		return nil, err
	}
	document, err := parseDocument(req.Document, typeID)
	if err != nil {
		return nil, err
	}
	phone, err := parsePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	customerID, err := s.repo.NextCustomerID(ctx)
	if err != nil {
		return nil, err
	}

	shortName := req.ShortName
	if shortName == "" {
		shortName = req.Name
	}

	customer := &models.Customer{
		CustomerID: customerID,
		CompanyID:  s.defaultCompanyID,
		TypeID:     typeID,
		Name:       req.Name,
		ShortName:  shortName,
		Document:   document,
		Phone:      phone,
		Address:    req.Address,
		CreatedBy:  actorOrDefault(actor),
	}
	if err := s.repo.InsertCustomer(ctx, customer); err != nil {
		return nil, err
	}

	util.CustomersRegisteredTotal.Inc()
	s.invalidateRefs(ctx)
	s.logger.Info("Customer registered",
		zap.Int64("customer_id", customer.CustomerID),
		zap.Int64("customer_type_id", customer.TypeID))
	return customer, nil
}

// Update overwrites the mutable fields of the customer identified by
// its full composite key.
func (s *CustomerService) Update(ctx context.Context, customerID, companyID, typeID string, req *UpdateCustomerRequest) error {
	ctx, span := util.StartSpan(ctx, "CustomerService.Update")
	defer span.End()

	key, err := parseCustomerKey(customerID, companyID, typeID)
	if err != nil {
		return err
	}
	newTypeID, err := parseCustomerType(req.CustomerTypeID)
	if err != nil {
		return err
	}
	document, err := parseDocument(req.Document, newTypeID)
	if err != nil {
		return err
	}
	phone, err := parsePhone(req.Phone)
	if err != nil {
		return err
	}

	shortName := req.ShortName
	if shortName == "" {
		shortName = req.Name
	}

	err = s.repo.UpdateCustomer(ctx, key, &models.Customer{
		TypeID:    newTypeID,
		Name:      req.Name,
		ShortName: shortName,
		Document:  document,
		Phone:     phone,
		Address:   req.Address,
		UpdatedBy: actorOrDefault(req.Actor),
	})
	if err != nil {
		return err
	}

	s.invalidateRefs(ctx)
	s.logger.Info("Customer updated", zap.Int64("customer_id", key.CustomerID))
	return nil
}

// Delete removes a customer. Customers referenced by orders are
// protected by the store's referential guard.
func (s *CustomerService) Delete(ctx context.Context, customerID, companyID, typeID string) error {
	ctx, span := util.StartSpan(ctx, "CustomerService.Delete")
	defer span.End()

	key, err := parseCustomerKey(customerID, companyID, typeID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCustomer(ctx, key); err != nil {
		return err
	}

	s.invalidateRefs(ctx)
	s.logger.Info("Customer deleted", zap.Int64("customer_id", key.CustomerID))
	return nil
}

// Get retrieves one customer by its exact-text composite key.
func (s *CustomerService) Get(ctx context.Context, customerID, companyID, typeID string) (*models.Customer, error) {
	key, err := parseCustomerKey(customerID, companyID, typeID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetCustomer(ctx, key)
}

// List returns all customers with their order counts.
func (s *CustomerService) List(ctx context.Context) ([]models.CustomerListing, error) {
	return s.repo.ListCustomers(ctx)
}

// Count returns the total number of registered customers.
func (s *CustomerService) Count(ctx context.Context) (int64, error) {
	return s.repo.CountCustomers(ctx)
}

func (s *CustomerService) invalidateRefs(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cacheKeyCustomerRefs); err != nil {
		s.logger.Warn("Failed to invalidate customer ref cache", zap.Error(err))
	}
}
