package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notes-auth/internal/domain"
	"notes-auth/internal/email"
	"notes-auth/internal/repository"
)

// DefaultMailTimeout acota cuanto espera una operacion por el envio del OTP.
const DefaultMailTimeout = 10 * time.Second

// errOtpDelivery marca fallos del Mailer; el OtpRecord ya quedo guardado.
var errOtpDelivery = errors.New("otp delivery failed")

// Recorder recibe el resultado de cada operacion; metrics.Metrics lo implementa.
type Recorder interface {
	ObserveOperation(operation, outcome string)
	ObserveOtpDispatch(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string) {}
func (nopRecorder) ObserveOtpDispatch(string)       {}

// AuthOptions agrupa parametros opcionales de AuthService.
type AuthOptions struct {
	OtpTTL      time.Duration
	MailTimeout time.Duration
	// LogOtpCodes escribe el codigo en claro a nivel debug. Solo para desarrollo.
	LogOtpCodes bool
	// ResendLimiter es opcional; nil deja los reenvios sin limite.
	ResendLimiter OTPRateLimiter
	Metrics       Recorder
}

// AuthService coordina registro, verificacion por OTP y login de cuentas.
type AuthService struct {
	logger      *zap.Logger
	accounts    repository.AccountRepository
	otps        repository.OtpRepository
	hasher      SecretHasher
	tokens      *TokenIssuer
	mailer      email.Mailer
	limiter     OTPRateLimiter
	metrics     Recorder
	otpTTL      time.Duration
	mailTimeout time.Duration
	logOtpCodes bool

	now     func() time.Time
	newCode func() (string, error)

	dummyOnce   sync.Once
	dummyDigest string
}

func NewAuthService(
	logger *zap.Logger,
	accounts repository.AccountRepository,
	otps repository.OtpRepository,
	hasher SecretHasher,
	tokens *TokenIssuer,
	mailer email.Mailer,
	opts AuthOptions,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OtpTTL <= 0 {
		opts.OtpTTL = DefaultOtpTTL
	}
	if opts.MailTimeout <= 0 {
		opts.MailTimeout = DefaultMailTimeout
	}
	if opts.Metrics == nil {
		opts.Metrics = nopRecorder{}
	}
	return &AuthService{
		logger:      logger,
		accounts:    accounts,
		otps:        otps,
		hasher:      hasher,
		tokens:      tokens,
		mailer:      mailer,
		limiter:     opts.ResendLimiter,
		metrics:     opts.Metrics,
		otpTTL:      opts.OtpTTL,
		mailTimeout: opts.MailTimeout,
		logOtpCodes: opts.LogOtpCodes,
		now:         time.Now,
		newCode:     generateOTPCode,
	}
}

// RegisterInput son los datos de alta de una cuenta.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// AuthResult se devuelve tras registro o login; Account nunca serializa el hash.
type AuthResult struct {
	Account domain.Account
	Token   SessionToken
	Message string
}

// UpdateProfileInput lleva los campos a cambiar; nil significa sin cambio.
type UpdateProfileInput struct {
	FullName *string
	Email    *string
	Password *string
}

// Register crea la cuenta sin verificar, envia el OTP y emite un token.
// Si el envio del correo falla la cuenta queda creada y el registro responde exito.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (_ AuthResult, err error) {
	defer func() { s.observe("register", err) }()

	fullName := strings.TrimSpace(input.FullName)
	emailAddr := normalizeEmail(input.Email)
	if fullName == "" || emailAddr == "" || strings.TrimSpace(input.Password) == "" {
		return AuthResult{}, validationError("All fields are required")
	}

	passwordHash, err := s.hashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	account := domain.Account{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		FullName:     fullName,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return AuthResult{}, ErrDuplicateAccount
		}
		return AuthResult{}, s.fail("create account", err, zap.String("email", emailAddr))
	}

	if err := s.GenerateAndSendOtp(ctx, account); err != nil && !errors.Is(err, errOtpDelivery) {
		return AuthResult{}, err
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return AuthResult{}, s.fail("issue token", err, zap.String("account_id", account.ID))
	}

	return AuthResult{
		Account: account,
		Token:   token,
		Message: "Registration successful. OTP sent to your email.",
	}, nil
}

// GenerateAndSendOtp reemplaza el OTP pendiente de la cuenta y lo envia por correo.
// El registro persiste aunque el envio falle; ese caso se reporta como errOtpDelivery.
func (s *AuthService) GenerateAndSendOtp(ctx context.Context, account domain.Account) error {
	return s.sendOtp(ctx, account.Email, verificationMessage)
}

func (s *AuthService) sendOtp(ctx context.Context, emailAddr string, msg otpMessage) error {
	code, err := s.newCode()
	if err != nil {
		return s.fail("generate otp", err)
	}
	otpHash, err := s.hasher.Hash(code)
	if err != nil {
		return s.fail("hash otp", err)
	}

	now := s.now().UTC()
	record := domain.OtpRecord{
		Email:     emailAddr,
		OtpHash:   otpHash,
		CreatedAt: now,
		ExpiresAt: now.Add(s.otpTTL),
	}
	if err := s.otps.Put(ctx, record); err != nil {
		return s.fail("store otp", err, zap.String("email", emailAddr))
	}
	if s.logOtpCodes {
		s.logger.Debug("otp generated", zap.String("email", emailAddr), zap.String("otp", code))
	}

	if s.mailer == nil {
		s.metrics.ObserveOtpDispatch("failed")
		s.logger.Warn("send verification otp skipped: no mailer", zap.String("email", emailAddr))
		return errOtpDelivery
	}
	sendCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()
	if err := s.mailer.Send(sendCtx, emailAddr, msg.subject, msg.body(code, s.otpTTL)); err != nil {
		outcome := "failed"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		s.metrics.ObserveOtpDispatch(outcome)
		s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("email", emailAddr))
		return fmt.Errorf("%w: %v", errOtpDelivery, err)
	}
	s.metrics.ObserveOtpDispatch("sent")
	return nil
}

// VerifyOtp valida el codigo y marca la cuenta como verificada.
// Un codigo incorrecto conserva el registro para reintentar; uno vencido lo elimina.
func (s *AuthService) VerifyOtp(ctx context.Context, emailAddr, code string) (err error) {
	defer func() { s.observe("verify_otp", err) }()

	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" || code == "" {
		return validationError("Email and OTP are required")
	}

	account, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		return s.lookupError("find account", err, emailAddr)
	}
	if account.Verified {
		return ErrAlreadyVerified
	}

	record, err := s.otps.Get(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOtpNotFound
		}
		return s.fail("find otp", err, zap.String("email", emailAddr))
	}

	if record.ExpiredAt(s.now().UTC()) {
		if err := s.otps.Delete(ctx, emailAddr); err != nil {
			return s.fail("delete expired otp", err, zap.String("email", emailAddr))
		}
		return ErrOtpExpired
	}

	if !isValidOTPCode(code) || !s.hasher.Verify(code, record.OtpHash) {
		return ErrInvalidOtp
	}

	if err := s.accounts.SetVerified(ctx, emailAddr); err != nil {
		return s.lookupError("set verified", err, emailAddr)
	}
	if err := s.otps.Delete(ctx, emailAddr); err != nil {
		return s.fail("delete used otp", err, zap.String("email", emailAddr))
	}
	return nil
}

// ResendOtp descarta el OTP pendiente y envia uno nuevo.
// A diferencia de Register, un fallo de envio se reporta al llamador.
func (s *AuthService) ResendOtp(ctx context.Context, emailAddr string) (err error) {
	defer func() { s.observe("resend_otp", err) }()

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return validationError("Email is required")
	}

	if _, err := s.accounts.GetByEmail(ctx, emailAddr); err != nil {
		return s.lookupError("find account", err, emailAddr)
	}
	if s.limiter != nil && !s.limiter.Allow(ctx, emailAddr) {
		return ErrRateLimited
	}

	if err := s.otps.Delete(ctx, emailAddr); err != nil {
		return s.fail("delete otp", err, zap.String("email", emailAddr))
	}
	if err := s.sendOtp(ctx, emailAddr, resendMessage); err != nil {
		if errors.Is(err, errOtpDelivery) {
			return dependencyFailure(err)
		}
		return err
	}
	return nil
}

// Login valida credenciales y emite un token. Las cuentas sin verificar tambien pueden entrar.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (_ AuthResult, err error) {
	defer func() { s.observe("login", err) }()

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || strings.TrimSpace(password) == "" {
		return AuthResult{}, validationError("Email and password are required")
	}

	account, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Mismo costo que un password incorrecto.
			s.hasher.Verify(password, s.dummyHash())
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, s.fail("find account", err, zap.String("email", emailAddr))
	}
	if !s.hasher.Verify(password, account.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return AuthResult{}, s.fail("issue token", err, zap.String("account_id", account.ID))
	}
	return AuthResult{Account: account, Token: token, Message: "Login successful"}, nil
}

// CheckVerified informa si la cuenta del email esta verificada.
func (s *AuthService) CheckVerified(ctx context.Context, emailAddr string) (_ bool, err error) {
	defer func() { s.observe("check_verified", err) }()

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return false, validationError("Email is required")
	}
	account, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		return false, s.lookupError("find account", err, emailAddr)
	}
	return account.Verified, nil
}

// CheckAccountExists nunca devuelve AccountNotFound; la ausencia es Exists=false.
func (s *AuthService) CheckAccountExists(ctx context.Context, emailAddr string) (_ domain.AccountStatus, err error) {
	defer func() { s.observe("check_account_exists", err) }()

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.AccountStatus{}, validationError("Email is required")
	}
	account, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.AccountStatus{}, nil
		}
		return domain.AccountStatus{}, s.fail("find account", err, zap.String("email", emailAddr))
	}
	return domain.AccountStatus{Exists: true, Verified: account.Verified}, nil
}

// CheckEmailAvailable devuelve DuplicateAccount si el email ya esta registrado.
func (s *AuthService) CheckEmailAvailable(ctx context.Context, emailAddr string) (err error) {
	defer func() { s.observe("check_email", err) }()

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return validationError("Email is required")
	}
	_, err = s.accounts.GetByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		return &Error{Kind: KindDuplicateAccount, Message: "User already exists, Login instead"}
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return s.fail("find account", err, zap.String("email", emailAddr))
	}
}

// GetAccount devuelve el perfil del dueno de la sesion.
func (s *AuthService) GetAccount(ctx context.Context, accountID string) (_ domain.Account, err error) {
	defer func() { s.observe("get_account", err) }()

	if strings.TrimSpace(accountID) == "" {
		return domain.Account{}, ErrInvalidToken
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, s.fail("get account", err, zap.String("account_id", accountID))
	}
	return account, nil
}

// UpdateProfile aplica cambios de nombre, email o password. Verified no cambia.
func (s *AuthService) UpdateProfile(ctx context.Context, accountID string, input UpdateProfileInput) (_ domain.Account, err error) {
	defer func() { s.observe("update_profile", err) }()

	if strings.TrimSpace(accountID) == "" {
		return domain.Account{}, ErrInvalidToken
	}

	var patch domain.AccountPatch
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return domain.Account{}, validationError("Full name cannot be empty")
		}
		patch.FullName = &name
	}
	if input.Email != nil {
		addr := normalizeEmail(*input.Email)
		if addr == "" {
			return domain.Account{}, validationError("Email cannot be empty")
		}
		patch.Email = &addr
	}
	if input.Password != nil {
		if strings.TrimSpace(*input.Password) == "" {
			return domain.Account{}, validationError("Password cannot be empty")
		}
		digest, err := s.hashPassword(*input.Password)
		if err != nil {
			return domain.Account{}, err
		}
		patch.PasswordHash = &digest
	}
	if patch.Empty() {
		return domain.Account{}, validationError("No changes provided")
	}

	account, err := s.accounts.UpdateProfile(ctx, accountID, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return domain.Account{}, ErrAccountNotFound
		case errors.Is(err, repository.ErrDuplicateEmail):
			return domain.Account{}, ErrDuplicateAccount
		default:
			return domain.Account{}, s.fail("update profile", err, zap.String("account_id", accountID))
		}
	}
	return account, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, ErrSecretTooLong) {
			return "", validationError("Password must be at most 72 bytes")
		}
		return "", s.fail("hash password", err)
	}
	return digest, nil
}

func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("notes-auth-dummy-password")
		if err != nil {
			s.logger.Warn("dummy hash unavailable", zap.Error(err))
			return
		}
		s.dummyDigest = digest
	})
	return s.dummyDigest
}

// lookupError traduce ErrNotFound de cuentas a AccountNotFound.
func (s *AuthService) lookupError(op string, err error, emailAddr string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountNotFound
	}
	return s.fail(op, err, zap.String("email", emailAddr))
}

// fail registra la causa completa y devuelve un DependencyFailure generico.
func (s *AuthService) fail(op string, err error, fields ...zap.Field) error {
	s.logger.Error(op+" failed", append(fields, zap.Error(err))...)
	return dependencyFailure(err)
}

func (s *AuthService) observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
	}
	s.metrics.ObserveOperation(operation, outcome)
}

// normalizeEmail solo recorta espacios; los emails se comparan tal como se guardaron.
func normalizeEmail(addr string) string {
	return strings.TrimSpace(addr)
}
