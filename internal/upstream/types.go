package upstream

import (
	"bytes"
	"encoding/json"
)

// Address is the shop's street address as stored upstream. Wire keys are
// the upstream's Portuguese field names.
type Address struct {
	PostalCode   string `json:"cep"`
	State        string `json:"estado"`
	City         string `json:"cidade"`
	Neighborhood string `json:"bairro"`
	Street       string `json:"rua"`
	Number       string `json:"numero"`
	Complement   string `json:"complemento,omitempty"`
}

// WorkingHour is one weekday's opening window.
type WorkingHour struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Barbershop is the public shop profile returned by /barbershops/slug/{slug}.
type Barbershop struct {
	ID                  string        `json:"_id"`
	Name                string        `json:"name"`
	Slug                string        `json:"slug"`
	Description         string        `json:"description,omitempty"`
	ThemeColor          string        `json:"themeColor,omitempty"`
	LogoURL             string        `json:"logoUrl,omitempty"`
	LogoBackgroundColor string        `json:"LogoBackgroundColor,omitempty"`
	Instagram           string        `json:"instagram,omitempty"`
	WhatsappNumber      string        `json:"whatsappNumber,omitempty"`
	Contact             string        `json:"contact,omitempty"`
	Address             Address       `json:"address"`
	WorkingHours        []WorkingHour `json:"workingHours,omitempty"`
	PaymentsEnabled     bool          `json:"paymentsEnabled,omitempty"`
}

// Service is a bookable service offered by a shop.
type Service struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	DurationMin int     `json:"duration,omitempty"`
}

// Barber is a staff member that can be booked.
type Barber struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Plan is a subscription plan sold by a shop.
type Plan struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Benefits    []string `json:"benefits,omitempty"`
}

// Review is a customer review of a shop.
type Review struct {
	ID           string  `json:"_id"`
	CustomerName string  `json:"customerName"`
	Rating       float64 `json:"rating"`
	Comment      string  `json:"comment,omitempty"`
	CreatedAt    string  `json:"createdAt,omitempty"`
}

// Product is a retail product listed in the shop's store page.
type Product struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       struct {
		Sale float64 `json:"sale"`
	} `json:"price"`
	Image    string `json:"image,omitempty"`
	Category string `json:"category,omitempty"`
	Brand    string `json:"brand,omitempty"`
	Stock    struct {
		Current int `json:"current"`
	} `json:"stock"`
}

// ProductPage is the paginated envelope of /products/store.
type ProductPage struct {
	Products   []Product `json:"products"`
	Pagination struct {
		Current int `json:"current"`
		Pages   int `json:"pages"`
		Total   int `json:"total"`
	} `json:"pagination"`
}

// TimeSlot is one bookable time of day. Identity is the time string within
// one day's list.
type TimeSlot struct {
	Time     string `json:"time"`
	IsBooked bool   `json:"isBooked"`
}

// FreeSlotsResponse is the reply of the free-slots endpoint. Older upstream
// versions return a bare slot array; UnmarshalJSON accepts both shapes.
type FreeSlotsResponse struct {
	Slots       []TimeSlot `json:"slots"`
	IsHoliday   bool       `json:"isHoliday,omitempty"`
	HolidayName string     `json:"holidayName,omitempty"`
}

// UnmarshalJSON accepts both the current object envelope and the legacy
// bare-array reply.
func (r *FreeSlotsResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var slots []TimeSlot
		if err := json.Unmarshal(trimmed, &slots); err != nil {
			return err
		}
		*r = FreeSlotsResponse{Slots: slots}
		return nil
	}

	type envelope FreeSlotsResponse
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	*r = FreeSlotsResponse(env)
	return nil
}

// Holiday is a national/regional holiday entry.
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// BookingCustomer is the contact block of a booking request.
type BookingCustomer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// CreateBookingRequest is the payload of POST /barbershops/{id}/bookings.
type CreateBookingRequest struct {
	Barbershop string          `json:"barbershop"`
	Barber     string          `json:"barber"`
	Service    string          `json:"service"`
	Time       string          `json:"time"` // RFC3339
	Customer   BookingCustomer `json:"customer"`
}

// BookingConfirmation is the success reply to a booking creation. PaymentURL
// is set when the shop requires an online deposit.
type BookingConfirmation struct {
	ID         string `json:"_id"`
	Status     string `json:"status,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`
}

// Customer is the authenticated storefront customer.
type Customer struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// VerifyOTPResponse carries the upstream bearer token issued after OTP login.
type VerifyOTPResponse struct {
	Token    string   `json:"token"`
	Customer Customer `json:"customer"`
}

// PopulatedBooking is a booking with its shop/barber/service references
// expanded, as returned by the customer bookings endpoint.
type PopulatedBooking struct {
	ID         string `json:"_id"`
	Barbershop struct {
		ID              string `json:"_id"`
		Name            string `json:"name"`
		Slug            string `json:"slug"`
		LogoURL         string `json:"logoUrl,omitempty"`
		PaymentsEnabled bool   `json:"paymentsEnabled,omitempty"`
	} `json:"barbershop"`
	Barber struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	} `json:"barber"`
	Service struct {
		ID    string  `json:"_id"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	} `json:"service"`
	Time          string `json:"time"` // RFC3339
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
}

// PaymentLink is the reply of the create-payment endpoint.
type PaymentLink struct {
	PaymentURL string `json:"payment_url"`
}
