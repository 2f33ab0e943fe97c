// Package auth contiene el AuthCoordinator: la única fuente de verdad de
// "quién está logueado, con qué perfil y hace cuánto", y el único
// componente que muta el estado de sesión.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dropDatabas3/walletgate/internal/domain"
	"github.com/dropDatabas3/walletgate/internal/gateway"
	"github.com/dropDatabas3/walletgate/internal/metrics"
	"github.com/dropDatabas3/walletgate/internal/observability/logger"
	"github.com/dropDatabas3/walletgate/internal/profilestore"
	"github.com/dropDatabas3/walletgate/internal/session"
	"golang.org/x/sync/singleflight"
)

// Deps contiene las dependencias del coordinator.
type Deps struct {
	Gateway gateway.Gateway
	Store   profilestore.Store
	Clock   session.Clock
	Tick    time.Duration // cadencia del reloj de sesión; default 1s
}

// Errores del coordinator
var (
	ErrGatewayRequired = fmt.Errorf("gateway is required")
	ErrStoreRequired   = fmt.Errorf("store is required")
)

// Coordinator orquesta gateway + store, deriva el view model y aplica la
// política de expiración. Un writer, muchos lectores vía Snapshot/Subscribe.
type Coordinator struct {
	deps Deps

	mu       sync.Mutex
	identity *domain.Identity
	profile  *domain.ProfileRecord
	user     *domain.DerivedUser
	loading  bool
	elapsed  time.Duration
	gen      uint64 // token de generación: invalida resoluciones stale

	// signingOut: SignOut ya fue aceptado pero la notificación de teardown
	// todavía no llegó. Mientras esté seteado el reloj queda clavado en 0.
	signingOut bool

	subs    map[int]func(Snapshot)
	nextSub int

	group singleflight.Group

	unsub    gateway.Unsubscribe
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New arma el coordinator, se suscribe al stream de auth events del
// gateway y arranca el tick del reloj de sesión.
//
// Hasta que llegue la primera notificación el estado es loading: ni
// "logged in" ni "logged out" se pueden asumir.
func New(deps Deps) (*Coordinator, error) {
	if deps.Gateway == nil {
		return nil, ErrGatewayRequired
	}
	if deps.Store == nil {
		return nil, ErrStoreRequired
	}
	// el zero value de session.Clock ya cae en time.Now
	if deps.Tick <= 0 {
		deps.Tick = time.Second
	}

	c := &Coordinator{
		deps:    deps,
		loading: true,
		subs:    make(map[int]func(Snapshot)),
		stopCh:  make(chan struct{}),
	}

	// la suscripción puede entregar el estado actual de forma síncrona
	c.unsub = deps.Gateway.OnAuthStateChanged(c.handleAuthEvent)

	go c.run()
	return c, nil
}

// Close cancela la suscripción y frena el tick.
func (c *Coordinator) Close() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if c.unsub != nil {
			c.unsub()
		}
	})
}

// Snapshot retorna una copia inmutable del estado actual.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{AuthLoading: c.loading, SessionElapsed: c.elapsed}
	if c.identity != nil {
		id := *c.identity
		s.Identity = &id
	}
	s.Profile = c.profile.Clone()
	if c.user != nil {
		u := *c.user
		s.User = &u
	}
	return s
}

// Subscribe registra un callback que recibe un Snapshot en cada cambio
// de estado. El callback corre en la goroutine que produjo el cambio.
func (c *Coordinator) Subscribe(fn func(Snapshot)) Unsubscribe {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// notify avisa a todos los suscriptores con el snapshot actual.
// Nunca se llama con c.mu tomado.
func (c *Coordinator) notify() {
	c.mu.Lock()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	if len(fns) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

// ─── Auth events ───

// handleAuthEvent reacciona a cada notificación del gateway.
// Cada evento toma un token de generación; si una resolución de perfil
// llega después de un evento más nuevo, se descarta en silencio.
func (c *Coordinator) handleAuthEvent(ident *domain.Identity) {
	log := logger.L().With(
		logger.Layer("service"),
		logger.Component("auth.coordinator"),
		logger.Op("handleAuthEvent"),
	)

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.signingOut = false

	if ident == nil {
		// sesión cerrada: teardown completo
		c.identity = nil
		c.profile = nil
		c.user = nil
		c.elapsed = 0
		c.loading = false
		c.mu.Unlock()
		log.Debug("auth state cleared", logger.Generation(gen))
		c.notify()
		return
	}

	c.identity = ident
	c.mu.Unlock()

	log = log.With(logger.IdentityID(ident.ID), logger.Generation(gen))

	prof, err := c.fetchProfile(context.Background(), ident.ID)
	if err != nil {
		if !errors.Is(err, profilestore.ErrNotFound) {
			log.Warn("profile fetch failed, synthesizing", logger.Err(err))
		}
		// primer login federado o store caído: perfil mínimo sintetizado
		// con kyc_completed=false para que los guards tengan estado decidible
		prof = synthesizeProfile(ident, c.deps.Clock.Now())
	}

	c.mu.Lock()
	if gen != c.gen {
		// notificación superada por una más nueva: descartar
		c.mu.Unlock()
		log.Debug("stale auth event discarded")
		return
	}
	c.profile = prof
	c.user = DeriveUser(prof)
	c.elapsed = c.deps.Clock.Elapsed(prof.SessionStartTime)
	c.loading = false
	c.mu.Unlock()

	c.notify()
}

// synthesizeProfile arma el perfil mínimo para una identidad sin record.
func synthesizeProfile(ident *domain.Identity, now time.Time) *domain.ProfileRecord {
	return &domain.ProfileRecord{
		ID:               ident.ID,
		Email:            ident.Email,
		Provider:         ident.Provider,
		EmailVerified:    ident.EmailVerified,
		CreatedAt:        now,
		LastLoginAt:      now,
		SessionStartTime: now,
		KYCCompleted:     false,
	}
}

// fetchProfile lee el perfil colapsando lecturas concurrentes del mismo id.
func (c *Coordinator) fetchProfile(ctx context.Context, id string) (*domain.ProfileRecord, error) {
	v, err, _ := c.group.Do(id, func() (any, error) {
		return c.deps.Store.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	rec, _ := v.(*domain.ProfileRecord)
	if rec == nil {
		return nil, profilestore.ErrNotFound
	}
	// el resultado del singleflight es compartido entre llamadores
	return rec.Clone(), nil
}

// FetchProfile expone la lectura de perfil a la capa de presentación.
func (c *Coordinator) FetchProfile(ctx context.Context, id string) (*domain.ProfileRecord, error) {
	return c.fetchProfile(ctx, id)
}

// ─── Sign up / sign in ───

// SignUp crea credenciales y puebla el estado de sesión de forma
// provisional ANTES de esperar la notificación o el store: el gating de
// UI queda correcto sin flash. La reconciliación con el record
// autoritativo corre async.
func (c *Coordinator) SignUp(ctx context.Context, email, password string) domain.AuthResult {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.coordinator"),
		logger.Op("SignUp"),
	)

	ident, err := c.deps.Gateway.CreateAccount(ctx, email, password)
	if err != nil {
		log.Debug("account creation failed", logger.Err(err))
		metrics.SignInFailures.WithLabelValues("signup").Inc()
		return domain.Fail(err)
	}

	gen, prov := c.applyOptimistic(ident)
	c.notify()
	go c.reconcileProfile(gen, ident, prov)

	metrics.SignIns.WithLabelValues("signup").Inc()
	log.Info("signup successful", logger.IdentityID(ident.ID))
	return domain.OK()
}

// SignIn autentica con credenciales. En éxito resetea el reloj de sesión
// a 0 y estampa session_start_time local de inmediato: evita un falso
// positivo de expiración en el próximo render, antes del round-trip.
func (c *Coordinator) SignIn(ctx context.Context, email, password string) domain.AuthResult {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.coordinator"),
		logger.Op("SignIn"),
	)

	ident, err := c.deps.Gateway.SignInWithPassword(ctx, email, password)
	if err != nil {
		log.Debug("login failed", logger.Err(err))
		metrics.SignInFailures.WithLabelValues("password").Inc()
		return domain.Fail(err)
	}

	gen, prov := c.applyOptimistic(ident)
	c.notify()
	go c.reconcileProfile(gen, ident, prov)

	metrics.SignIns.WithLabelValues("password").Inc()
	log.Info("login successful", logger.IdentityID(ident.ID))
	return domain.OK()
}

// SignInWithFederated autentica vía provider federado (google|apple).
func (c *Coordinator) SignInWithFederated(ctx context.Context, provider domain.Provider) domain.AuthResult {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.coordinator"),
		logger.Op("SignInWithFederated"),
		logger.Provider(string(provider)),
	)

	ident, err := c.deps.Gateway.SignInWithFederated(ctx, provider)
	if err != nil {
		log.Debug("federated login failed", logger.Err(err))
		metrics.SignInFailures.WithLabelValues(string(provider)).Inc()
		return domain.Fail(err)
	}

	gen, prov := c.applyOptimistic(ident)
	c.notify()
	go c.reconcileProfile(gen, ident, prov)

	metrics.SignIns.WithLabelValues(string(provider)).Inc()
	log.Info("federated login successful", logger.IdentityID(ident.ID))
	return domain.OK()
}

// applyOptimistic aplica el estado provisional post-login de forma
// síncrona y retorna la generación con la que debe reconciliar.
func (c *Coordinator) applyOptimistic(ident *domain.Identity) (uint64, *domain.ProfileRecord) {
	now := c.deps.Clock.Now()

	c.mu.Lock()
	c.gen++ // el estado provisional supera cualquier resolución en vuelo
	gen := c.gen
	c.signingOut = false
	c.identity = ident

	if c.profile != nil && c.profile.ID == ident.ID {
		c.profile.SessionStartTime = now
		c.profile.LastLoginAt = now
	} else {
		c.profile = synthesizeProfile(ident, now)
	}
	c.user = DeriveUser(c.profile)
	c.elapsed = 0
	c.loading = false
	prov := c.profile.Clone()
	c.mu.Unlock()

	return gen, prov
}

// reconcileProfile trae el record autoritativo y lo aplica solo si la
// generación sigue vigente. Si el store falla, el estado optimista queda
// como best-effort (no se hace rollback).
func (c *Coordinator) reconcileProfile(gen uint64, ident *domain.Identity, prov *domain.ProfileRecord) {
	ctx := context.Background()
	log := logger.L().With(
		logger.Layer("service"),
		logger.Component("auth.coordinator"),
		logger.Op("reconcileProfile"),
		logger.IdentityID(ident.ID),
		logger.Generation(gen),
	)

	authoritative, err := c.fetchProfile(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, profilestore.ErrNotFound) {
			// cuenta nueva: persistir el provisional como record inicial
			if cerr := c.deps.Store.Create(ctx, ident.ID, prov); cerr != nil && !errors.Is(cerr, profilestore.ErrConflict) {
				log.Warn("initial profile create failed", logger.Err(cerr))
			}
			return
		}
		log.Warn("profile reconcile fetch failed", logger.Err(err))
		return
	}

	// refrescar timestamps de login en el store (best effort)
	fields := map[string]any{
		"last_login_at":      prov.LastLoginAt,
		"session_start_time": prov.SessionStartTime,
	}
	if uerr := c.deps.Store.Update(ctx, ident.ID, fields); uerr != nil {
		log.Warn("login timestamps update failed", logger.Err(uerr))
	}
	authoritative.LastLoginAt = prov.LastLoginAt
	authoritative.SessionStartTime = prov.SessionStartTime

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		log.Debug("stale reconcile discarded")
		return
	}
	c.profile = authoritative
	c.user = DeriveUser(authoritative)
	c.elapsed = c.deps.Clock.Elapsed(authoritative.SessionStartTime)
	c.mu.Unlock()

	c.notify()
}

// ─── Sign out y delegaciones ───

// SignOut cierra la sesión. El reloj se resetea a 0 de inmediato,
// independiente de la notificación async, para que la UI reaccione sin
// delay; el teardown completo llega con la notificación.
func (c *Coordinator) SignOut(ctx context.Context) domain.AuthResult {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.coordinator"),
		logger.Op("SignOut"),
	)

	if err := c.deps.Gateway.SignOut(ctx); err != nil {
		log.Debug("sign out failed", logger.Err(err))
		return domain.Fail(err)
	}

	c.mu.Lock()
	c.elapsed = 0
	c.signingOut = true
	c.mu.Unlock()
	c.notify()

	metrics.SignOuts.Inc()
	log.Info("sign out successful")
	return domain.OK()
}

// ResetPassword delega al gateway; sin cambio de estado local.
func (c *Coordinator) ResetPassword(ctx context.Context, email string) domain.AuthResult {
	if err := c.deps.Gateway.SendPasswordReset(ctx, email); err != nil {
		return domain.Fail(err)
	}
	logger.From(ctx).Info("password reset requested",
		logger.Layer("service"),
		logger.Component("auth.coordinator"),
		logger.Email(email),
	)
	return domain.OK()
}

// SendEmailVerification delega al gateway para la sesión activa.
func (c *Coordinator) SendEmailVerification(ctx context.Context) domain.AuthResult {
	if err := c.deps.Gateway.SendEmailVerification(ctx); err != nil {
		return domain.Fail(err)
	}
	return domain.OK()
}

// CheckEmailVerified recarga la identidad activa en el provider.
func (c *Coordinator) CheckEmailVerified(ctx context.Context) bool {
	return c.deps.Gateway.ReloadAndCheckEmailVerified(ctx)
}

// ─── KYC y perfil ───

// SubmitKYC escribe el KYCRecord (submitted ahora, status pending) y marca
// kyc_completed. En éxito el estado local se actualiza síncrono: el guard
// re-evalúa sin re-fetch.
func (c *Coordinator) SubmitKYC(ctx context.Context, kyc domain.KYCRecord) domain.AuthResult {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.coordinator"),
		logger.Op("SubmitKYC"),
	)

	c.mu.Lock()
	ident := c.identity
	c.mu.Unlock()
	if ident == nil {
		metrics.KYCSubmissions.WithLabelValues("unauthenticated").Inc()
		return domain.Fail(domain.ErrNotAuthenticated)
	}

	// exactamente uno de personal/business según account_type
	switch kyc.AccountType {
	case domain.AccountIndividual:
		if kyc.PersonalInfo == nil || kyc.BusinessInfo != nil {
			return domain.Fail(domain.ErrInvalidKYC)
		}
	case domain.AccountBusiness:
		if kyc.BusinessInfo == nil || kyc.PersonalInfo != nil {
			return domain.Fail(domain.ErrInvalidKYC)
		}
	default:
		return domain.Fail(domain.ErrInvalidKYC)
	}

	kyc.SubmittedAt = c.deps.Clock.Now()
	kyc.Status = domain.KYCPending
	kyc.VerifiedAt = nil

	fields := map[string]any{
		"kyc_completed": true,
		"kyc_data":      &kyc,
	}
	if err := c.deps.Store.Update(ctx, ident.ID, fields); err != nil {
		log.Warn("kyc store update failed", logger.Err(err), logger.IdentityID(ident.ID))
		metrics.KYCSubmissions.WithLabelValues("error").Inc()
		return domain.Fail(fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err))
	}

	c.mu.Lock()
	if c.profile != nil {
		c.profile.KYCCompleted = true
		c.profile.KYCData = &kyc
		c.user = DeriveUser(c.profile)
	}
	c.mu.Unlock()
	c.notify()

	metrics.KYCSubmissions.WithLabelValues("ok").Inc()
	log.Info("kyc submitted", logger.IdentityID(ident.ID), logger.String("account_type", string(kyc.AccountType)))
	return domain.OK()
}

// IsKYCCompleted indica si el perfil activo completó KYC.
func (c *Coordinator) IsKYCCompleted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile != nil && c.profile.KYCCompleted
}

// UpdateProfile aplica un update parcial (claves JSON del ProfileRecord)
// en el store y mergea en el estado local.
func (c *Coordinator) UpdateProfile(ctx context.Context, fields map[string]any) domain.AuthResult {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.coordinator"),
		logger.Op("UpdateProfile"),
	)

	c.mu.Lock()
	ident := c.identity
	c.mu.Unlock()
	if ident == nil {
		return domain.Fail(domain.ErrNotAuthenticated)
	}

	if err := c.deps.Store.Update(ctx, ident.ID, fields); err != nil {
		log.Warn("profile update failed", logger.Err(err), logger.IdentityID(ident.ID))
		return domain.Fail(fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err))
	}

	c.mu.Lock()
	if c.profile != nil {
		if err := profilestore.ApplyFields(c.profile, fields); err != nil {
			log.Warn("local profile merge failed", logger.Err(err))
		}
		c.user = DeriveUser(c.profile)
	}
	c.mu.Unlock()
	c.notify()

	return domain.OK()
}

// ─── Expiración ───

// RefreshSessionTime re-lee el tiempo de sesión autoritativo desde el
// store y, si superó el TTL, cierra la sesión él mismo. Es el único punto
// de enforcement activo; el pasivo vive en los route guards.
func (c *Coordinator) RefreshSessionTime(ctx context.Context, userID string) domain.AuthResult {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.coordinator"),
		logger.Op("RefreshSessionTime"),
	)

	if userID == "" {
		c.mu.Lock()
		if c.identity != nil {
			userID = c.identity.ID
		}
		c.mu.Unlock()
	}
	if userID == "" {
		return domain.Fail(domain.ErrNotAuthenticated)
	}

	prof, err := c.fetchProfile(ctx, userID)
	if err != nil {
		log.Warn("session time refresh failed", logger.Err(err), logger.IdentityID(userID))
		return domain.Fail(fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err))
	}

	elapsed := c.deps.Clock.Elapsed(prof.SessionStartTime)

	c.mu.Lock()
	c.elapsed = elapsed
	c.mu.Unlock()
	c.notify()

	if session.Expired(elapsed) {
		log.Info("session expired on refresh, signing out",
			logger.IdentityID(userID), logger.Elapsed(elapsed))
		metrics.SessionsExpired.Inc()
		return c.SignOut(ctx)
	}
	return domain.OK()
}

// run es el tick del reloj de sesión: recalcula elapsed con cadencia fija
// mientras haya identidad con session start registrado. Solo frescura de
// UI; la decisión de expiración usa el mismo predicado en todos lados.
func (c *Coordinator) run() {
	t := time.NewTicker(c.deps.Tick)
	defer t.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-t.C:
			c.mu.Lock()
			// con teardown pendiente el reloj queda en 0: recalcular acá
			// reviviría el elapsed pre-signout hasta que llegue la notificación
			if c.signingOut || c.identity == nil || c.profile == nil || c.profile.SessionStartTime.IsZero() {
				c.mu.Unlock()
				continue
			}
			c.elapsed = c.deps.Clock.Elapsed(c.profile.SessionStartTime)
			elapsed := c.elapsed
			c.mu.Unlock()

			metrics.SessionElapsedSeconds.Set(elapsed.Seconds())
			c.notify()
		}
	}
}
