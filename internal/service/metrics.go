package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var invitationsAcceptedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "invitations_accepted_total",
		Help: "Invitation acceptance attempts by result",
	},
	[]string{"result"},
)
