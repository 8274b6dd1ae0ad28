package models

type Car struct {
	ID               int64   `json:"id" yaml:"id"`
	Name             string  `json:"name" yaml:"name"`
	Brand            string  `json:"brand" yaml:"brand"`
	TopSpeed         int64   `json:"topSpeed" yaml:"top_speed"` // km/h
	Horsepower       int64   `json:"horsepower" yaml:"horsepower"`
	Acceleration     float64 `json:"acceleration" yaml:"acceleration"` // 0-100 km/h in seconds
	EngineType       string  `json:"engineType" yaml:"engine_type"`
	Transmission     string  `json:"transmission" yaml:"transmission"`
	FuelType         string  `json:"fuelType" yaml:"fuel_type"`
	DailyRate        int64   `json:"dailyRate" yaml:"daily_rate"` // INR per day
	ImageURL         string  `json:"imageUrl" yaml:"image_url"`
	InteriorImageURL string  `json:"interiorImageUrl,omitempty" yaml:"interior_image_url,omitempty"`
	IsAvailable      bool    `json:"isAvailable" yaml:"is_available"`
	IsNewArrival     bool    `json:"isNewArrival,omitempty" yaml:"is_new_arrival,omitempty"`
	Description      string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// CarPatch describes a partial car update; nil fields are left unchanged.
type CarPatch struct {
	Name             *string  `json:"name,omitempty"`
	Brand            *string  `json:"brand,omitempty"`
	TopSpeed         *int64   `json:"topSpeed,omitempty"`
	Horsepower       *int64   `json:"horsepower,omitempty"`
	Acceleration     *float64 `json:"acceleration,omitempty"`
	EngineType       *string  `json:"engineType,omitempty"`
	Transmission     *string  `json:"transmission,omitempty"`
	FuelType         *string  `json:"fuelType,omitempty"`
	DailyRate        *int64   `json:"dailyRate,omitempty"`
	ImageURL         *string  `json:"imageUrl,omitempty"`
	InteriorImageURL *string  `json:"interiorImageUrl,omitempty"`
	IsAvailable      *bool    `json:"isAvailable,omitempty"`
	IsNewArrival     *bool    `json:"isNewArrival,omitempty"`
	Description      *string  `json:"description,omitempty"`
}

// Apply merges the patch onto a car.
func (p CarPatch) Apply(car *Car) {
	if p.Name != nil {
		car.Name = *p.Name
	}
	if p.Brand != nil {
		car.Brand = *p.Brand
	}
	if p.TopSpeed != nil {
		car.TopSpeed = *p.TopSpeed
	}
	if p.Horsepower != nil {
		car.Horsepower = *p.Horsepower
	}
	if p.Acceleration != nil {
		car.Acceleration = *p.Acceleration
	}
	if p.EngineType != nil {
		car.EngineType = *p.EngineType
	}
	if p.Transmission != nil {
		car.Transmission = *p.Transmission
	}
	if p.FuelType != nil {
		car.FuelType = *p.FuelType
	}
	if p.DailyRate != nil {
		car.DailyRate = *p.DailyRate
	}
	if p.ImageURL != nil {
		car.ImageURL = *p.ImageURL
	}
	if p.InteriorImageURL != nil {
		car.InteriorImageURL = *p.InteriorImageURL
	}
	if p.IsAvailable != nil {
		car.IsAvailable = *p.IsAvailable
	}
	if p.IsNewArrival != nil {
		car.IsNewArrival = *p.IsNewArrival
	}
	if p.Description != nil {
		car.Description = *p.Description
	}
}
