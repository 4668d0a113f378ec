package pagestate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// pageLoadsTotal counts LoadPage outcomes: cache, remote, error, superseded,
// out_of_range.
var pageLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pokedex_page_loads_total",
	Help: "Total page loads by result",
}, []string{"result"})
