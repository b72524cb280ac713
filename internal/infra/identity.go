package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrCredenciales is returned when the identity provider rejects a sign-in.
var ErrCredenciales = errors.New("credenciales inválidas")

// ErrCuentaExiste is returned when the submitted email already has an account.
var ErrCuentaExiste = errors.New("la cuenta ya existe")

// IdentityClient is an HTTP client against the hosted identity provider.
// Account deletion exists only as compensating action for a failed profile
// write; it is never exposed as a user-facing feature.
type IdentityClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewIdentityClient(baseURL string) *IdentityClient {
	return &IdentityClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type cuentaRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type cuentaResponse struct {
	ID string `json:"id"`
}

// CrearCuenta registers a new account and returns its id.
func (c *IdentityClient) CrearCuenta(ctx context.Context, email, password string) (string, error) {
	resp, err := c.post(ctx, "/v1/accounts", cuentaRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
	case http.StatusConflict:
		return "", ErrCuentaExiste
	default:
		return "", fmt.Errorf("identidad: crear cuenta devolvió %d", resp.StatusCode)
	}

	var out cuentaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("identidad: decodificar respuesta: %w", err)
	}
	return out.ID, nil
}

// IniciarSesion validates credentials and returns the account id.
func (c *IdentityClient) IniciarSesion(ctx context.Context, email, password string) (string, error) {
	resp, err := c.post(ctx, "/v1/sessions", cuentaRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized, http.StatusNotFound:
		return "", ErrCredenciales
	default:
		return "", fmt.Errorf("identidad: iniciar sesión devolvió %d", resp.StatusCode)
	}

	var out cuentaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("identidad: decodificar respuesta: %w", err)
	}
	return out.ID, nil
}

// CerrarSesion invalidates the provider-side session for the account.
func (c *IdentityClient) CerrarSesion(ctx context.Context, accountID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/v1/sessions/"+accountID, nil)
	if err != nil {
		return fmt.Errorf("identidad: crear request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identidad: proveedor inalcanzable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("identidad: cerrar sesión devolvió %d", resp.StatusCode)
	}
	return nil
}

// EliminarCuenta removes an account. Compensation only.
func (c *IdentityClient) EliminarCuenta(ctx context.Context, accountID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/v1/accounts/"+accountID, nil)
	if err != nil {
		return fmt.Errorf("identidad: crear request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identidad: proveedor inalcanzable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("identidad: eliminar cuenta devolvió %d", resp.StatusCode)
	}
	return nil
}

func (c *IdentityClient) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("identidad: serializar payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("identidad: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identidad: proveedor inalcanzable: %w", err)
	}
	return resp, nil
}
